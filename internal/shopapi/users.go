package shopapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/five82/shopdesk/internal/media"
)

const usersPath = "/api/NguoiDung"

// Credentials are sent to the login endpoint.
type Credentials struct {
	Username string `json:"taiKhoan"`
	Password string `json:"matKhau"`
}

// LoginResult is the token and user returned by a successful login.
type LoginResult struct {
	Token string
	User  User
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	path := usersPath + "/login"
	body, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: creds})
	if err != nil {
		return LoginResult{}, err
	}
	var payload struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return LoginResult{}, &Error{Kind: KindDecode, Method: http.MethodPost, Path: path, Err: err}
	}
	if strings.TrimSpace(payload.Token) == "" {
		return LoginResult{}, &Error{Kind: KindDecode, Method: http.MethodPost, Path: path, Message: "login response has no token"}
	}
	return LoginResult{Token: payload.Token, User: c.toUser(payload.User)}, nil
}

// Registration is the sign-up payload.
type Registration struct {
	Username string `json:"taiKhoan"`
	Password string `json:"matKhau"`
	Name     string `json:"hoTen"`
	Email    string `json:"email"`
	Phone    string `json:"soDienThoai,omitempty"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return send(ctx, c, Request{Method: http.MethodPost, Path: usersPath, Body: reg})
}

// Users lists accounts.
func (c *Client) Users(ctx context.Context, page, pageSize int) (Page[User], error) {
	return getPage(ctx, c, usersPath, pageValues(page, pageSize), c.toUser)
}

// User fetches one account.
func (c *Client) User(ctx context.Context, id string) (User, error) {
	return getOne(ctx, c, usersPath+"/"+url.PathEscape(id), c.toUser)
}

// UserForm re-submits the scalar fields of raw with overrides applied.
// Keys are matched case-insensitively so overrides replace the server's
// spelling of the same field.
func UserForm(raw map[string]any, overrides map[string]string) *media.Form {
	merged := make(map[string]string, len(raw)+len(overrides))
	canonical := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := scalarString(v)
		if !ok {
			continue
		}
		merged[k] = s
		canonical[strings.ToLower(k)] = k
	}
	for k, v := range overrides {
		if existing, ok := canonical[strings.ToLower(k)]; ok {
			merged[existing] = v
			continue
		}
		merged[k] = v
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	form := media.NewForm()
	for _, k := range keys {
		form.Set(k, merged[k])
	}
	return form
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

// UpdateUser submits a multipart user update.
func (c *Client) UpdateUser(ctx context.Context, id string, form *media.Form) error {
	return send(ctx, c, Request{Method: http.MethodPut, Path: usersPath + "/" + url.PathEscape(id), Form: form})
}

// SetUserStatus re-submits u with trangThai set for status.
func (c *Client) SetUserStatus(ctx context.Context, u User, status UserStatus) error {
	code := "1"
	if status == UserBanned {
		code = "0"
	}
	return c.UpdateUser(ctx, u.ID, UserForm(u.Raw, map[string]string{"trangThai": code}))
}

// UpdateAvatar uploads a new profile image.
func (c *Client) UpdateAvatar(ctx context.Context, u User, file media.File) error {
	form := UserForm(u.Raw, nil).Add(media.FieldImageFile, file)
	return c.UpdateUser(ctx, u.ID, form)
}

// PasswordChange is the multipart password change payload.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// ChangePassword updates the user's password.
func (c *Client) ChangePassword(ctx context.Context, u User, pc PasswordChange) error {
	form := UserForm(u.Raw, map[string]string{
		"MatKhauCu":      pc.Current,
		"MatKhauMoi":     pc.New,
		"XacNhanMatKhau": pc.Confirm,
	})
	return c.UpdateUser(ctx, u.ID, form)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return send(ctx, c, Request{Method: http.MethodDelete, Path: usersPath + "/" + url.PathEscape(id)})
}

// ForgotPassword asks the backend to send a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": strings.TrimSpace(email)}
	return send(ctx, c, Request{Method: http.MethodPost, Path: usersPath + "/forgot-password", Body: body})
}

// PasswordReset completes a forgot-password flow.
type PasswordReset struct {
	Email       string `json:"email"`
	Code        string `json:"otp"`
	NewPassword string `json:"matKhauMoi"`
}

// ResetPassword sets a new password using the emailed code.
func (c *Client) ResetPassword(ctx context.Context, reset PasswordReset) error {
	return send(ctx, c, Request{Method: http.MethodPost, Path: usersPath + "/reset-password", Body: reset})
}
