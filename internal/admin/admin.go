// Package admin implements the back-office workflows on top of the list and
// optimistic mutation primitives: user ban and unban, setting and comment
// visibility, the logo conflict prompt and bulk actions over a selection.
//
// Every toggle is applied to the loaded list first and rolled back when the
// backend rejects it. Bulk actions issue one request per selected id and
// report a single aggregate failure.
package admin

import (
	"context"
	"errors"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/optimistic"
	"github.com/five82/shopdesk/internal/shopapi"
)

// ErrNotLoaded is returned when an action names an id that is not in the
// loaded list.
var ErrNotLoaded = errors.New("item not loaded")

// API is the subset of the backend the admin console uses.
type API interface {
	Users(ctx context.Context, page, pageSize int) (shopapi.Page[shopapi.User], error)
	SetUserStatus(ctx context.Context, u shopapi.User, status shopapi.UserStatus) error

	Settings(ctx context.Context, typeCode int) ([]shopapi.Setting, error)
	CreateSetting(ctx context.Context, in shopapi.SettingInput) error
	UpdateSetting(ctx context.Context, id int64, in shopapi.SettingInput) error
	SetSettingStatus(ctx context.Context, s shopapi.Setting, status int) error

	Comments(ctx context.Context, q shopapi.CommentQuery) (shopapi.Page[shopapi.Comment], error)
	SetCommentVisible(ctx context.Context, id int64, visible bool) error

	FilterProducts(ctx context.Context, f shopapi.ProductFilter) (shopapi.Page[shopapi.Product], error)
	DeleteProduct(ctx context.Context, id string, hardDeleteImages bool) error
}

var _ API = (*shopapi.Client)(nil)

// Filter keys understood by the admin fetchers.
const (
	FilterSettingType = "loaiGiaoDien"
	FilterStatus      = "trangThai"
)

// Options configure a Console.
type Options struct {
	Notifier notify.Notifier
	Logger   logrus.FieldLogger
	// BulkLimit caps concurrent requests in bulk actions; zero is no cap.
	BulkLimit int
}

// Console holds the admin lists and their selections.
type Console struct {
	api      API
	notifier notify.Notifier
	log      logrus.FieldLogger
	limit    int

	Users    *listing.List[shopapi.User, string]
	Settings *listing.List[shopapi.Setting, int64]
	Comments *listing.List[shopapi.Comment, int64]
	Products *listing.List[shopapi.Product, string]

	UserSelection    optimistic.Selection[string]
	SettingSelection optimistic.Selection[int64]
	ProductSelection optimistic.Selection[string]
}

// New builds a console with empty lists.
func New(api API, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		logger = silent
	}
	c := &Console{
		api:      api,
		notifier: notify.Or(opts.Notifier),
		log:      logger.WithField("component", "admin"),
		limit:    opts.BulkLimit,
	}
	listOpts := listing.Options{Notifier: c.notifier, Logger: c.log}
	c.Users = listing.New(c.fetchUsers, func(u shopapi.User) string { return u.ID }, listOpts)
	c.Settings = listing.New(c.fetchSettings, func(s shopapi.Setting) int64 { return s.ID }, listOpts)
	c.Comments = listing.New(c.fetchComments, func(cm shopapi.Comment) int64 { return cm.ID }, listOpts)
	c.Products = listing.New(c.fetchProducts, func(p shopapi.Product) string { return p.ID }, listOpts)
	return c
}

func (c *Console) fetchUsers(ctx context.Context, q listing.Query) (shopapi.Page[shopapi.User], error) {
	return c.api.Users(ctx, q.Page, q.PageSize)
}

// The settings endpoint is not paginated.
func (c *Console) fetchSettings(ctx context.Context, q listing.Query) (shopapi.Page[shopapi.Setting], error) {
	typeCode, _ := strconv.Atoi(q.Filters[FilterSettingType])
	items, err := c.api.Settings(ctx, typeCode)
	if err != nil {
		return shopapi.Page[shopapi.Setting]{}, err
	}
	return shopapi.Page[shopapi.Setting]{Items: items, Page: 1, TotalPages: 1}, nil
}

func (c *Console) fetchComments(ctx context.Context, q listing.Query) (shopapi.Page[shopapi.Comment], error) {
	cq := shopapi.CommentQuery{Page: q.Page, PageSize: q.PageSize, Keyword: q.Keyword}
	if raw, ok := q.Filters[FilterStatus]; ok {
		if status, err := strconv.Atoi(raw); err == nil {
			cq.Status = &status
		}
	}
	return c.api.Comments(ctx, cq)
}

func (c *Console) fetchProducts(ctx context.Context, q listing.Query) (shopapi.Page[shopapi.Product], error) {
	return c.api.FilterProducts(ctx, shopapi.ProductFilter{
		Keyword:  q.Keyword,
		Page:     q.Page,
		PageSize: q.PageSize,
		SortBy:   q.SortBy,
	})
}

// logRollback records a rejected write. The user-facing message is sent by
// the mutation itself.
func (c *Console) logRollback(action string, id any, err error) {
	if err == nil {
		return
	}
	c.log.WithError(err).WithFields(logrus.Fields{
		"action": action,
		"id":     id,
	}).Warn("mutation rolled back")
}
