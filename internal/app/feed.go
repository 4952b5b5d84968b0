package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/shopapi"
	"github.com/five82/shopdesk/internal/state"
)

// FeedAPI is the part of the storefront API the home feed reads.
type FeedAPI interface {
	NewestProducts(ctx context.Context, page, pageSize int) (shopapi.Page[shopapi.Product], error)
	HotSaleProducts(ctx context.Context, page, pageSize int) (shopapi.Page[shopapi.Product], error)
	CategoriesByType(ctx context.Context, typeCode int) ([]shopapi.Category, error)
	Settings(ctx context.Context, typeCode int) ([]shopapi.Setting, error)
}

var _ FeedAPI = (*shopapi.Client)(nil)

// FeedLoader refreshes the home feed into a state.Store.
type FeedLoader struct {
	API      FeedAPI
	Store    *state.Store
	PageSize int
	Log      logrus.FieldLogger
}

const (
	sectionNewest = iota
	sectionHotSale
	sectionCategories
	sectionSettings
	sectionCount
)

// Refresh loads every feed section concurrently. A section that fails keeps
// its previous contents; the store only counts a failure when every section
// failed. The returned error combines the section failures.
func (l FeedLoader) Refresh(ctx context.Context) error {
	var (
		newest, hot []shopapi.Product
		categories  []shopapi.Category
		settings    []shopapi.Setting
		errs        [sectionCount]error
	)

	var g errgroup.Group
	g.Go(func() error {
		page, err := l.API.NewestProducts(ctx, 1, l.PageSize)
		if err != nil {
			errs[sectionNewest] = fmt.Errorf("newest products: %w", err)
			return nil
		}
		newest = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := l.API.HotSaleProducts(ctx, 1, l.PageSize)
		if err != nil {
			errs[sectionHotSale] = fmt.Errorf("hot-sale products: %w", err)
			return nil
		}
		hot = page.Items
		return nil
	})
	g.Go(func() error {
		merged, err := listing.FetchMerged(ctx,
			func(c shopapi.Category) int64 { return c.ID },
			l.categories(shopapi.CategoryProductType),
			l.categories(shopapi.CategoryBrand),
		)
		if err != nil {
			errs[sectionCategories] = fmt.Errorf("categories: %w", err)
		}
		categories = merged
		return nil
	})
	g.Go(func() error {
		list, err := l.API.Settings(ctx, 0)
		if err != nil {
			errs[sectionSettings] = fmt.Errorf("settings: %w", err)
			return nil
		}
		settings = list
		return nil
	})
	_ = g.Wait()

	err := multierr.Combine(errs[:]...)
	if len(multierr.Errors(err)) == sectionCount {
		l.Store.Update(nil, err)
		l.logger().WithError(err).Warn("home feed refresh failed")
		return err
	}

	feed := l.Store.Snapshot().Feed
	if errs[sectionNewest] == nil {
		feed.Newest = newest
	}
	if errs[sectionHotSale] == nil {
		feed.HotSale = hot
	}
	if categories != nil || errs[sectionCategories] == nil {
		feed.Categories = categories
	}
	if errs[sectionSettings] == nil {
		feed.Logo, feed.Banners, feed.Sliders = splitSettings(settings)
	}
	l.Store.Update(&feed, err)

	if err != nil {
		l.logger().WithError(err).Warn("home feed partially refreshed")
	} else {
		l.logger().WithFields(logrus.Fields{
			"newest":     len(feed.Newest),
			"hot_sale":   len(feed.HotSale),
			"categories": len(feed.Categories),
		}).Debug("home feed refreshed")
	}
	return err
}

func (l FeedLoader) categories(typeCode int) func(context.Context) ([]shopapi.Category, error) {
	return func(ctx context.Context) ([]shopapi.Category, error) {
		return l.API.CategoriesByType(ctx, typeCode)
	}
}

func (l FeedLoader) logger() logrus.FieldLogger {
	if l.Log == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		return silent
	}
	return l.Log
}

// splitSettings picks the first active logo and the active banners and
// sliders, in backend order.
func splitSettings(settings []shopapi.Setting) (*shopapi.Setting, []shopapi.Setting, []shopapi.Setting) {
	var (
		logo             *shopapi.Setting
		banners, sliders []shopapi.Setting
	)
	for _, s := range settings {
		if !s.Active() {
			continue
		}
		switch s.Type {
		case shopapi.SettingLogo:
			if logo == nil {
				found := s
				logo = &found
			}
		case shopapi.SettingBanner:
			banners = append(banners, s)
		case shopapi.SettingSlider:
			sliders = append(sliders, s)
		}
	}
	return logo, banners, sliders
}
