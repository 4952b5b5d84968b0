// Package auth holds the signed-in session and the account flows: login,
// registration, password change and reset.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/five82/shopdesk/internal/localstore"
	"github.com/five82/shopdesk/internal/shopapi"
)

// ErrNotSignedIn is returned by flows that need a session.
var ErrNotSignedIn = errors.New("not signed in")

// Claim names the ASP.NET backend puts in its tokens, short and long form.
var (
	idClaims    = []string{"nameid", "sub", "maNguoiDung", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"}
	nameClaims  = []string{"unique_name", "name", "hoTen", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"}
	emailClaims = []string{"email", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"}
	roleClaims  = []string{"role", "vaiTro", "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"}
)

// Session is the persisted bearer token plus the signed-in user. It
// implements shopapi.TokenSource.
type Session struct {
	mu      sync.RWMutex
	kv      *localstore.Store
	log     logrus.FieldLogger
	now     func() time.Time
	token   string
	expires time.Time
	user    *shopapi.User
}

// Open loads the stored token. Expired JWTs are discarded; tokens that are
// not JWTs are kept as opaque bearer tokens with the user saved beside them.
func Open(kv *localstore.Store, log logrus.FieldLogger) (*Session, error) {
	if kv == nil {
		return nil, fmt.Errorf("auth: store required")
	}
	if log == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		log = silent
	}
	s := &Session{kv: kv, log: log, now: time.Now}

	var token string
	ok, err := kv.Get(localstore.KeyAuthToken, &token)
	if err != nil {
		log.WithError(err).Warn("stored token unreadable, signing out")
		return s, s.clearStored()
	}
	if !ok || strings.TrimSpace(token) == "" {
		return s, nil
	}
	info, jwtErr := inspect(token)
	if jwtErr == nil && info.expired(s.now()) {
		log.WithField("expired_at", info.expires).Info("stored token expired, signing out")
		return s, s.clearStored()
	}
	if jwtErr != nil {
		log.WithError(jwtErr).Debug("stored token has no readable claims, using it as opaque")
	}
	s.token = token
	s.expires = info.expires
	s.user = info.user()

	var saved shopapi.User
	if ok, err := kv.Get(localstore.KeyAuthUser, &saved); err != nil {
		log.WithError(err).Warn("stored user unreadable")
	} else if ok && saved.ID != "" && (s.user == nil || s.user.ID == saved.ID) {
		s.user = &saved
	}
	return s, nil
}

// Token returns the bearer token, or "" when signed out or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.expires.IsZero() && !s.now().Before(s.expires) {
		return ""
	}
	return s.token
}

// SignedIn reports whether a usable token is held.
func (s *Session) SignedIn() bool {
	return s.Token() != ""
}

// User returns the signed-in user.
func (s *Session) User() (shopapi.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.token == "" {
		return shopapi.User{}, false
	}
	return *s.user, true
}

// IsAdmin reports whether the signed-in user has the admin role.
func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin
}

// ExpiresAt returns the token expiry, zero when the token has none.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expires
}

// Set stores a new token and user. Claims are read when the token is a
// JWT; otherwise the token is kept as-is and user identifies the session.
func (s *Session) Set(token string, user shopapi.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("auth: empty token")
	}
	info, err := inspect(token)
	if err != nil {
		s.log.WithError(err).Debug("token has no readable claims, storing it as opaque")
		info = tokenInfo{}
	}
	merged := info.user()
	if user.ID != "" {
		merged = &user
	}
	if err := s.kv.Put(localstore.KeyAuthToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if merged != nil {
		if err := s.kv.Put(localstore.KeyAuthUser, *merged); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
	} else if err := s.kv.Delete(localstore.KeyAuthUser); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.expires = info.expires
	s.user = merged
	s.mu.Unlock()
	return nil
}

// SetUser replaces the cached user after a profile refresh.
func (s *Session) SetUser(user shopapi.User) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.user = &user
	s.mu.Unlock()
	if err := s.kv.Put(localstore.KeyAuthUser, user); err != nil {
		s.log.WithError(err).Warn("save refreshed user failed")
	}
}

// Clear signs out and removes the stored token.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.expires = time.Time{}
	s.user = nil
	s.mu.Unlock()
	return s.clearStored()
}

func (s *Session) clearStored() error {
	return multierr.Append(
		s.kv.Delete(localstore.KeyAuthToken),
		s.kv.Delete(localstore.KeyAuthUser),
	)
}

type tokenInfo struct {
	claims  jwt.MapClaims
	expires time.Time
}

func (t tokenInfo) expired(now time.Time) bool {
	return !t.expires.IsZero() && !now.Before(t.expires)
}

func (t tokenInfo) user() *shopapi.User {
	id := claimString(t.claims, idClaims)
	if id == "" {
		return nil
	}
	role := strings.ToLower(claimString(t.claims, roleClaims))
	return &shopapi.User{
		ID:      id,
		Name:    claimString(t.claims, nameClaims),
		Email:   claimString(t.claims, emailClaims),
		IsAdmin: role == "admin" || role == "1",
		Status:  shopapi.UserActive,
	}
}

// inspect decodes the token's claims without verifying the signature; the
// backend is the only party that can verify it.
func inspect(token string) (tokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenInfo{}, err
	}
	info := tokenInfo{claims: claims}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return tokenInfo{}, err
	}
	if exp != nil {
		info.expires = exp.Time
	}
	return info, nil
}

func claimString(claims jwt.MapClaims, names []string) string {
	for _, name := range names {
		switch v := claims[name].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}
