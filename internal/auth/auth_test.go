package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopdesk/internal/localstore"
	"github.com/five82/shopdesk/internal/shopapi"
	"github.com/five82/shopdesk/internal/validate"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func openSession(t *testing.T, dir string) (*Session, *localstore.Store) {
	t.Helper()
	kv, err := localstore.Open(dir)
	require.NoError(t, err)
	s, err := Open(kv, nil)
	require.NoError(t, err)
	return s, kv
}

type fakeAPI struct {
	login     shopapi.LoginResult
	loginErr  error
	creds     shopapi.Credentials
	users     map[string]shopapi.User
	changed   *shopapi.PasswordChange
	changedOn shopapi.User
	reg       *shopapi.Registration
	forgot    string
	reset     *shopapi.PasswordReset
}

func (f *fakeAPI) Login(_ context.Context, creds shopapi.Credentials) (shopapi.LoginResult, error) {
	f.creds = creds
	return f.login, f.loginErr
}

func (f *fakeAPI) Register(_ context.Context, reg shopapi.Registration) error {
	f.reg = &reg
	return nil
}

func (f *fakeAPI) User(_ context.Context, id string) (shopapi.User, error) {
	u, ok := f.users[id]
	if !ok {
		return shopapi.User{}, &shopapi.Error{Kind: shopapi.KindNotFound, Status: 404}
	}
	return u, nil
}

func (f *fakeAPI) ChangePassword(_ context.Context, u shopapi.User, pc shopapi.PasswordChange) error {
	f.changedOn = u
	f.changed = &pc
	return nil
}

func (f *fakeAPI) ForgotPassword(_ context.Context, email string) error {
	f.forgot = email
	return nil
}

func (f *fakeAPI) ResetPassword(_ context.Context, reset shopapi.PasswordReset) error {
	f.reset = &reset
	return nil
}

func TestSession_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	s, _ := openSession(t, dir)
	token := signToken(t, jwt.MapClaims{
		"nameid": "42",
		"role":   "Admin",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, s.Set(token, shopapi.User{}))

	reopened, _ := openSession(t, dir)
	assert.Equal(t, token, reopened.Token())
	u, ok := reopened.User()
	require.True(t, ok)
	assert.Equal(t, "42", u.ID)
	assert.True(t, reopened.IsAdmin())
}

func TestSession_ExpiredTokenClearedOnOpen(t *testing.T) {
	dir := t.TempDir()
	kv, err := localstore.Open(dir)
	require.NoError(t, err)
	expired := signToken(t, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, kv.Put(localstore.KeyAuthToken, expired))

	s, err := Open(kv, nil)
	require.NoError(t, err)
	assert.False(t, s.SignedIn())

	var stored string
	ok, err := kv.Get(localstore.KeyAuthToken, &stored)
	require.NoError(t, err)
	assert.False(t, ok, "expired token deleted from disk")
}

func TestSession_OpaqueTokenPersistsWithUser(t *testing.T) {
	dir := t.TempDir()
	s, _ := openSession(t, dir)
	const token = "3f9a0c2e-opaque-session-token"
	require.NoError(t, s.Set(token, shopapi.User{ID: "9", Name: "Lan", IsAdmin: true}))

	assert.True(t, s.SignedIn())
	assert.Equal(t, token, s.Token())
	assert.True(t, s.ExpiresAt().IsZero())

	reopened, _ := openSession(t, dir)
	assert.True(t, reopened.SignedIn())
	assert.Equal(t, token, reopened.Token())
	u, ok := reopened.User()
	require.True(t, ok)
	assert.Equal(t, "9", u.ID)
	assert.Equal(t, "Lan", u.Name)
	assert.True(t, reopened.IsAdmin())

	require.NoError(t, reopened.Clear())
	again, _ := openSession(t, dir)
	assert.False(t, again.SignedIn())
	_, ok = again.User()
	assert.False(t, ok)
}

func TestSession_SetRejectsEmptyToken(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	require.Error(t, s.Set("  ", shopapi.User{ID: "1"}))
	assert.False(t, s.SignedIn())
}

func TestSession_TokenEmptyOnceExpired(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	start := time.Now()
	token := signToken(t, jwt.MapClaims{"sub": "1", "exp": start.Add(time.Hour).Unix()})
	require.NoError(t, s.Set(token, shopapi.User{}))
	assert.NotEmpty(t, s.Token())

	s.now = func() time.Time { return start.Add(2 * time.Hour) }
	assert.Empty(t, s.Token())
	assert.False(t, s.SignedIn())
}

func TestService_LoginStoresSession(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	token := signToken(t, jwt.MapClaims{"sub": "7", "exp": time.Now().Add(time.Hour).Unix()})
	api := &fakeAPI{login: shopapi.LoginResult{Token: token, User: shopapi.User{ID: "7", Username: "lan", Name: "Lan"}}}
	svc := Service{API: api, Session: s}

	u, err := svc.Login(context.Background(), LoginRequest{Username: "  lan ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "lan", api.creds.Username, "username trimmed")
	assert.Equal(t, "Lan", u.Name, "server user preferred over claims")
	assert.Equal(t, token, s.Token())

	require.NoError(t, svc.Logout())
	assert.False(t, s.SignedIn())
}

func TestService_LoginWithOpaqueToken(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	api := &fakeAPI{login: shopapi.LoginResult{Token: "3f9a0c2e-opaque-session-token", User: shopapi.User{ID: "7", Name: "Lan"}}}
	svc := Service{API: api, Session: s}

	u, err := svc.Login(context.Background(), LoginRequest{Username: "lan", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "7", u.ID, "login response user used when the token carries no claims")
	assert.True(t, s.SignedIn())
}

func TestService_LoginFailureLeavesSessionEmpty(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	api := &fakeAPI{loginErr: &shopapi.Error{Kind: shopapi.KindClient, Status: 400, Message: "Sai mật khẩu"}}
	svc := Service{API: api, Session: s}

	_, err := svc.Login(context.Background(), LoginRequest{Username: "lan", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Sai mật khẩu", shopapi.Message(err))
	assert.False(t, s.SignedIn())
}

func TestService_LoginValidatesBeforeCalling(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	api := &fakeAPI{}
	svc := Service{API: api, Session: s}

	_, err := svc.Login(context.Background(), LoginRequest{Username: " "})
	var ve *validate.Error
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("Tài khoản"))
	assert.True(t, ve.Has("Mật khẩu"))
	assert.Empty(t, api.creds.Username, "API not called")
}

func TestService_RegisterRejectsMismatchedConfirm(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	api := &fakeAPI{}
	svc := Service{API: api, Session: s}

	err := svc.Register(context.Background(), RegisterRequest{
		Username: "lan", Password: "secret1", Confirm: "secret2", Name: "Lan", Email: "lan@shop.vn",
	})
	var ve *validate.Error
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("Xác nhận mật khẩu"))
	assert.Nil(t, api.reg)

	err = svc.Register(context.Background(), RegisterRequest{
		Username: "lan", Password: "secret1", Confirm: "secret1", Name: "Lan", Email: "lan@shop.vn", Phone: "0901234567",
	})
	require.NoError(t, err)
	require.NotNil(t, api.reg)
	assert.Equal(t, "0901234567", api.reg.Phone)
}

func TestService_ChangePasswordUsesFreshProfile(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	token := signToken(t, jwt.MapClaims{"sub": "7", "exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, s.Set(token, shopapi.User{}))
	fresh := shopapi.User{ID: "7", Name: "Lan", Raw: map[string]any{"hoTen": "Lan"}}
	api := &fakeAPI{users: map[string]shopapi.User{"7": fresh}}
	svc := Service{API: api, Session: s}

	err := svc.ChangePassword(context.Background(), ChangePasswordRequest{Current: "old123", New: "new123", Confirm: "new123"})
	require.NoError(t, err)
	require.NotNil(t, api.changed)
	assert.Equal(t, "Lan", api.changedOn.Raw["hoTen"])
	u, _ := s.User()
	assert.Equal(t, "Lan", u.Name)
}

func TestService_ChangePasswordRequiresNewValue(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	svc := Service{API: &fakeAPI{}, Session: s}

	err := svc.ChangePassword(context.Background(), ChangePasswordRequest{Current: "same12", New: "same12", Confirm: "same12"})
	var ve *validate.Error
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("Mật khẩu mới"))

	err = svc.ChangePassword(context.Background(), ChangePasswordRequest{Current: "old123", New: "new123", Confirm: "new123"})
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestService_ForgotAndReset(t *testing.T) {
	s, _ := openSession(t, t.TempDir())
	api := &fakeAPI{}
	svc := Service{API: api, Session: s}

	require.Error(t, svc.ForgotPassword(context.Background(), "nope"))
	require.NoError(t, svc.ForgotPassword(context.Background(), " lan@shop.vn "))
	assert.Equal(t, "lan@shop.vn", api.forgot)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email: "lan@shop.vn", Code: " 123456 ", NewPassword: "new123", Confirm: "new123",
	})
	require.NoError(t, err)
	assert.Equal(t, "123456", api.reset.Code)
}
