package admin

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/five82/shopdesk/internal/optimistic"
	"github.com/five82/shopdesk/internal/shopapi"
)

// withStatus returns u with status set, in both the typed field and a copy
// of the raw record so later updates re-submit the new value.
func withStatus(u shopapi.User, status shopapi.UserStatus) shopapi.User {
	u.Status = status
	code := "1"
	if status == shopapi.UserBanned {
		code = "0"
	}
	raw := maps.Clone(u.Raw)
	if raw == nil {
		raw = map[string]any{}
	}
	key := "trangThai"
	for k := range raw {
		if strings.EqualFold(k, key) {
			key = k
			break
		}
	}
	raw[key] = code
	u.Raw = raw
	return u
}

func (c *Console) userMutation(id string, status func(shopapi.UserStatus) shopapi.UserStatus) optimistic.Mutation[shopapi.User] {
	return optimistic.Mutation[shopapi.User]{
		Read: func() shopapi.User {
			u, _ := c.Users.Get(id)
			return u
		},
		Write: func(u shopapi.User) {
			c.Users.Update(id, func(shopapi.User) shopapi.User { return u })
		},
		Next: func(u shopapi.User) shopapi.User {
			return withStatus(u, status(u.Status))
		},
		Commit: func(ctx context.Context, next shopapi.User) error {
			return c.api.SetUserStatus(ctx, next, next.Status)
		},
		Notifier: c.notifier,
		Describe: "update user " + id,
	}
}

// StageBanToggle flips the user's status locally and returns the pending
// write. The view renders the flipped state before calling Commit.
func (c *Console) StageBanToggle(id string) (*optimistic.Staged[shopapi.User], error) {
	if _, ok := c.Users.Get(id); !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotLoaded)
	}
	return optimistic.Stage(c.userMutation(id, shopapi.UserStatus.Toggle)), nil
}

// ToggleBan bans an active user or unbans a banned one.
func (c *Console) ToggleBan(ctx context.Context, id string) error {
	staged, err := c.StageBanToggle(id)
	if err != nil {
		return err
	}
	err = staged.Commit(ctx)
	c.logRollback("toggle ban", id, err)
	return err
}

// BanUsers bans every listed user, one request each.
func (c *Console) BanUsers(ctx context.Context, ids []string) error {
	return c.setUsersStatus(ctx, ids, shopapi.UserBanned)
}

// UnbanUsers reactivates every listed user.
func (c *Console) UnbanUsers(ctx context.Context, ids []string) error {
	return c.setUsersStatus(ctx, ids, shopapi.UserActive)
}

func (c *Console) setUsersStatus(ctx context.Context, ids []string, status shopapi.UserStatus) error {
	err := optimistic.Bulk[string, shopapi.User]{
		IDs:     ids,
		Capture: c.Users.Get,
		Apply: func(id string, current shopapi.User) {
			next := withStatus(current, status)
			c.Users.Update(id, func(shopapi.User) shopapi.User { return next })
		},
		Restore: func(id string, previous shopapi.User) {
			c.Users.Update(id, func(shopapi.User) shopapi.User { return previous })
		},
		Commit: func(ctx context.Context, id string) error {
			u, ok := c.Users.Get(id)
			if !ok {
				return ErrNotLoaded
			}
			return c.api.SetUserStatus(ctx, u, status)
		},
		Limit:    c.limit,
		Notifier: c.notifier,
		Describe: "Cập nhật người dùng",
	}.Run(ctx)
	c.logRollback("bulk user status", ids, err)
	return err
}

// BanSelected bans the selected users and leaves selection mode.
func (c *Console) BanSelected(ctx context.Context) error {
	return c.BanUsers(ctx, c.UserSelection.Submit())
}
