package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/shopdesk/internal/shopapi"
	"github.com/five82/shopdesk/internal/validate"
)

// API is the subset of the backend the account flows use.
type API interface {
	Login(ctx context.Context, creds shopapi.Credentials) (shopapi.LoginResult, error)
	Register(ctx context.Context, reg shopapi.Registration) error
	User(ctx context.Context, id string) (shopapi.User, error)
	ChangePassword(ctx context.Context, u shopapi.User, pc shopapi.PasswordChange) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, reset shopapi.PasswordReset) error
}

var _ API = (*shopapi.Client)(nil)

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Username string `label:"Tài khoản" validate:"required"`
	Password string `label:"Mật khẩu" validate:"required"`
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Username string `label:"Tài khoản" validate:"required,min=3,max=50"`
	Password string `label:"Mật khẩu" validate:"required,min=6"`
	Confirm  string `label:"Xác nhận mật khẩu" validate:"required,eqfield=Password"`
	Name     string `label:"Họ tên" validate:"required,max=100"`
	Email    string `label:"Email" validate:"required,email"`
	Phone    string `label:"Số điện thoại" validate:"omitempty,phone"`
}

// ChangePasswordRequest is the password change form.
type ChangePasswordRequest struct {
	Current string `label:"Mật khẩu hiện tại" validate:"required"`
	New     string `label:"Mật khẩu mới" validate:"required,min=6,nefield=Current"`
	Confirm string `label:"Xác nhận mật khẩu" validate:"required,eqfield=New"`
}

// ResetPasswordRequest completes a forgot-password flow.
type ResetPasswordRequest struct {
	Email       string `label:"Email" validate:"required,email"`
	Code        string `label:"Mã xác nhận" validate:"required"`
	NewPassword string `label:"Mật khẩu mới" validate:"required,min=6"`
	Confirm     string `label:"Xác nhận mật khẩu" validate:"required,eqfield=NewPassword"`
}

// Service runs the account flows against the API and records the result in
// the session.
type Service struct {
	API     API
	Session *Session
}

// Login signs in and persists the token.
func (s Service) Login(ctx context.Context, req LoginRequest) (shopapi.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return shopapi.User{}, err
	}
	res, err := s.API.Login(ctx, shopapi.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		return shopapi.User{}, err
	}
	if err := s.Session.Set(res.Token, res.User); err != nil {
		return shopapi.User{}, err
	}
	user, _ := s.Session.User()
	return user, nil
}

// Logout clears the session.
func (s Service) Logout() error {
	return s.Session.Clear()
}

// Register creates an account. The caller signs in separately.
func (s Service) Register(ctx context.Context, req RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.API.Register(ctx, shopapi.Registration{
		Username: req.Username,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Phone:    strings.TrimSpace(req.Phone),
	})
}

// Refresh refetches the signed-in user's profile.
func (s Service) Refresh(ctx context.Context) (shopapi.User, error) {
	current, ok := s.Session.User()
	if !ok {
		return shopapi.User{}, ErrNotSignedIn
	}
	user, err := s.API.User(ctx, current.ID)
	if err != nil {
		return shopapi.User{}, fmt.Errorf("refresh profile: %w", err)
	}
	s.Session.SetUser(user)
	return user, nil
}

// ChangePassword updates the signed-in user's password. The full profile is
// fetched first so the update does not blank other fields.
func (s Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	user, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	return s.API.ChangePassword(ctx, user, shopapi.PasswordChange{
		Current: req.Current,
		New:     req.New,
		Confirm: req.Confirm,
	})
}

// ForgotPassword requests a reset code for email.
func (s Service) ForgotPassword(ctx context.Context, email string) error {
	req := struct {
		Email string `label:"Email" validate:"required,email"`
	}{Email: strings.TrimSpace(email)}
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.API.ForgotPassword(ctx, req.Email)
}

// ResetPassword sets a new password with the emailed code.
func (s Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if err := validate.Struct(req); err != nil {
		return err
	}
	return s.API.ResetPassword(ctx, shopapi.PasswordReset{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	})
}
