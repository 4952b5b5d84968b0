package admin

import (
	"context"
	"fmt"

	"github.com/five82/shopdesk/internal/optimistic"
	"github.com/five82/shopdesk/internal/shopapi"
	"github.com/five82/shopdesk/internal/validate"
)

func flipStatus(status int) int {
	if status == 1 {
		return 0
	}
	return 1
}

func (c *Console) settingMutation(id int64, next func(shopapi.Setting) shopapi.Setting) optimistic.Mutation[shopapi.Setting] {
	return optimistic.Mutation[shopapi.Setting]{
		Read: func() shopapi.Setting {
			s, _ := c.Settings.Get(id)
			return s
		},
		Write: func(s shopapi.Setting) {
			c.Settings.Update(id, func(shopapi.Setting) shopapi.Setting { return s })
		},
		Next: next,
		Commit: func(ctx context.Context, s shopapi.Setting) error {
			return c.api.SetSettingStatus(ctx, s, s.Status)
		},
		// Activating a logo deactivates the rest server-side; only a reload
		// shows that.
		Reload: func(ctx context.Context) error {
			return c.Settings.Refresh(ctx)
		},
		Notifier: c.notifier,
		Describe: fmt.Sprintf("update setting %d", id),
	}
}

// StageSettingToggle shows a hidden setting or hides a shown one locally and
// returns the pending write.
func (c *Console) StageSettingToggle(id int64) (*optimistic.Staged[shopapi.Setting], error) {
	if _, ok := c.Settings.Get(id); !ok {
		return nil, fmt.Errorf("setting %d: %w", id, ErrNotLoaded)
	}
	return optimistic.Stage(c.settingMutation(id, func(s shopapi.Setting) shopapi.Setting {
		s.Status = flipStatus(s.Status)
		return s
	})), nil
}

// ToggleSetting flips a setting's visibility and reloads the list.
func (c *Console) ToggleSetting(ctx context.Context, id int64) error {
	staged, err := c.StageSettingToggle(id)
	if err != nil {
		return err
	}
	err = staged.Commit(ctx)
	c.logRollback("toggle setting", id, err)
	return err
}

// LogoConflicts returns the active logos when more than one is active.
func (c *Console) LogoConflicts() []shopapi.Setting {
	return LogoConflicts(c.Settings.Items())
}

// LogoConflicts returns the active logos in settings when more than one is
// active, otherwise nil.
func LogoConflicts(settings []shopapi.Setting) []shopapi.Setting {
	var active []shopapi.Setting
	for _, s := range settings {
		if s.Type == shopapi.SettingLogo && s.Active() {
			active = append(active, s)
		}
	}
	if len(active) < 2 {
		return nil
	}
	return active
}

// ResolveLogo activates the chosen logo and reloads. The backend deactivates
// the others; the list is not edited to predict that.
func (c *Console) ResolveLogo(ctx context.Context, id int64) error {
	s, ok := c.Settings.Get(id)
	if !ok {
		return fmt.Errorf("setting %d: %w", id, ErrNotLoaded)
	}
	if s.Type != shopapi.SettingLogo {
		return fmt.Errorf("setting %d is a %s, not a logo", id, shopapi.SettingTypeLabel(s.Type))
	}
	err := optimistic.Apply(ctx, c.settingMutation(id, func(s shopapi.Setting) shopapi.Setting {
		s.Status = 1
		return s
	}))
	c.logRollback("resolve logo", id, err)
	return err
}

// HideSettings hides every listed setting, one request each, then reloads.
func (c *Console) HideSettings(ctx context.Context, ids []int64) error {
	err := optimistic.Bulk[int64, shopapi.Setting]{
		IDs:     ids,
		Capture: c.Settings.Get,
		Apply: func(id int64, current shopapi.Setting) {
			current.Status = 0
			c.Settings.Update(id, func(shopapi.Setting) shopapi.Setting { return current })
		},
		Restore: func(id int64, previous shopapi.Setting) {
			c.Settings.Update(id, func(shopapi.Setting) shopapi.Setting { return previous })
		},
		Commit: func(ctx context.Context, id int64) error {
			s, ok := c.Settings.Get(id)
			if !ok {
				return ErrNotLoaded
			}
			return c.api.SetSettingStatus(ctx, s, 0)
		},
		Reload:   c.Settings.Refresh,
		Limit:    c.limit,
		Notifier: c.notifier,
		Describe: "Ẩn giao diện",
	}.Run(ctx)
	c.logRollback("bulk hide settings", ids, err)
	return err
}

// HideSelected hides the selected settings and leaves selection mode.
func (c *Console) HideSelected(ctx context.Context) error {
	return c.HideSettings(ctx, c.SettingSelection.Submit())
}

// SaveSetting validates in and creates the setting when id is zero or
// replaces it otherwise, then reloads.
func (c *Console) SaveSetting(ctx context.Context, id int64, in shopapi.SettingInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	var err error
	if id == 0 {
		err = c.api.CreateSetting(ctx, in)
	} else {
		err = c.api.UpdateSetting(ctx, id, in)
	}
	if err != nil {
		return err
	}
	return c.Settings.Refresh(ctx)
}
