package admin

import (
	"context"
	"fmt"

	"github.com/five82/shopdesk/internal/optimistic"
	"github.com/five82/shopdesk/internal/shopapi"
)

// StageCommentToggle shows or hides a review locally and returns the pending
// write.
func (c *Console) StageCommentToggle(id int64) (*optimistic.Staged[shopapi.Comment], error) {
	if _, ok := c.Comments.Get(id); !ok {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotLoaded)
	}
	return optimistic.Stage(optimistic.Mutation[shopapi.Comment]{
		Read: func() shopapi.Comment {
			cm, _ := c.Comments.Get(id)
			return cm
		},
		Write: func(cm shopapi.Comment) {
			c.Comments.Update(id, func(shopapi.Comment) shopapi.Comment { return cm })
		},
		Next: func(cm shopapi.Comment) shopapi.Comment {
			cm.Visible = !cm.Visible
			return cm
		},
		Commit: func(ctx context.Context, cm shopapi.Comment) error {
			return c.api.SetCommentVisible(ctx, cm.ID, cm.Visible)
		},
		Notifier: c.notifier,
		Describe: fmt.Sprintf("update comment %d", id),
	}), nil
}

// ToggleComment flips a review's visibility.
func (c *Console) ToggleComment(ctx context.Context, id int64) error {
	staged, err := c.StageCommentToggle(id)
	if err != nil {
		return err
	}
	err = staged.Commit(ctx)
	c.logRollback("toggle comment", id, err)
	return err
}
