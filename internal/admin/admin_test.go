package admin

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/notify"
	"github.com/five82/shopdesk/internal/optimistic"
	"github.com/five82/shopdesk/internal/shopapi"
	"github.com/five82/shopdesk/internal/validate"
)

var errOffline = &shopapi.Error{Kind: shopapi.KindNetwork, Err: errors.New("dial tcp: connection refused")}

// fakeAPI is an in-memory backend. fail names ids whose writes are rejected.
type fakeAPI struct {
	mu       sync.Mutex
	users    []shopapi.User
	settings []shopapi.Setting
	comments []shopapi.Comment
	products []shopapi.Product
	fail     map[string]bool
	offline  bool

	statusCalls  []string
	settingCalls []int64
	deleteCalls  []string
	created      []shopapi.SettingInput
}

func (f *fakeAPI) rejects(id string) bool {
	return f.offline || f.fail[id]
}

func (f *fakeAPI) Users(context.Context, int, int) (shopapi.Page[shopapi.User], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return shopapi.Page[shopapi.User]{Items: slices.Clone(f.users), Page: 1, TotalPages: 1}, nil
}

func (f *fakeAPI) SetUserStatus(_ context.Context, u shopapi.User, status shopapi.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, u.ID)
	if f.rejects(u.ID) {
		return errOffline
	}
	for i := range f.users {
		if f.users[i].ID == u.ID {
			f.users[i].Status = status
		}
	}
	return nil
}

func (f *fakeAPI) Settings(_ context.Context, typeCode int) ([]shopapi.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []shopapi.Setting
	for _, s := range f.settings {
		if typeCode == 0 || s.Type == typeCode {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) CreateSetting(_ context.Context, in shopapi.SettingInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	f.settings = append(f.settings, shopapi.Setting{ID: int64(100 + len(f.created)), Name: in.Name, Type: in.Type, Status: in.Status})
	return nil
}

func (f *fakeAPI) UpdateSetting(context.Context, int64, shopapi.SettingInput) error {
	return nil
}

// SetSettingStatus mimics the backend: activating a logo deactivates the
// other logos.
func (f *fakeAPI) SetSettingStatus(_ context.Context, s shopapi.Setting, status int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settingCalls = append(f.settingCalls, s.ID)
	if f.offline {
		return errOffline
	}
	for i := range f.settings {
		switch {
		case f.settings[i].ID == s.ID:
			f.settings[i].Status = status
		case status == 1 && s.Type == shopapi.SettingLogo && f.settings[i].Type == shopapi.SettingLogo:
			f.settings[i].Status = 0
		}
	}
	return nil
}

func (f *fakeAPI) Comments(context.Context, shopapi.CommentQuery) (shopapi.Page[shopapi.Comment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return shopapi.Page[shopapi.Comment]{Items: slices.Clone(f.comments), Page: 1, TotalPages: 1}, nil
}

func (f *fakeAPI) SetCommentVisible(_ context.Context, id int64, visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return errOffline
	}
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Visible = visible
		}
	}
	return nil
}

func (f *fakeAPI) FilterProducts(context.Context, shopapi.ProductFilter) (shopapi.Page[shopapi.Product], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return shopapi.Page[shopapi.Product]{Items: slices.Clone(f.products), Page: 1, TotalPages: 1}, nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.rejects(id) {
		return &shopapi.Error{Kind: shopapi.KindClient, Status: 409, Message: "Sản phẩm đang có đơn hàng"}
	}
	f.products = slices.DeleteFunc(f.products, func(p shopapi.Product) bool { return p.ID == id })
	return nil
}

func newConsole(t *testing.T, api *fakeAPI) (*Console, *notify.Toasts) {
	t.Helper()
	toasts := notify.NewToasts()
	c := New(api, Options{Notifier: toasts})
	ctx := context.Background()
	require.NoError(t, c.Users.Load(ctx, listing.Query{}))
	require.NoError(t, c.Settings.Load(ctx, listing.Query{}))
	require.NoError(t, c.Comments.Load(ctx, listing.Query{}))
	require.NoError(t, c.Products.Load(ctx, listing.Query{}))
	return c, toasts
}

func userStatus(t *testing.T, c *Console, id string) shopapi.UserStatus {
	t.Helper()
	u, ok := c.Users.Get(id)
	require.True(t, ok)
	return u.Status
}

func TestToggleBan_OfflineFlipsThenReverts(t *testing.T) {
	api := &fakeAPI{users: []shopapi.User{{ID: "u1", Status: shopapi.UserActive}}, offline: true}
	c, toasts := newConsole(t, api)

	staged, err := c.StageBanToggle("u1")
	require.NoError(t, err)
	assert.Equal(t, shopapi.UserBanned, userStatus(t, c, "u1"), "flipped before the write settles")

	err = staged.Commit(context.Background())
	require.Error(t, err)
	assert.Equal(t, shopapi.UserActive, userStatus(t, c, "u1"), "rolled back")
	assert.Equal(t, 1, toasts.Count(notify.LevelError))
	assert.Contains(t, toasts.All()[0].Message, "kết nối mạng")

	require.Error(t, staged.Commit(context.Background()))
	assert.Equal(t, 1, toasts.Count(notify.LevelError), "second Commit does not report again")
	assert.Len(t, api.statusCalls, 1)
}

func TestToggleBan_SuccessUpdatesRawRecord(t *testing.T) {
	api := &fakeAPI{users: []shopapi.User{{
		ID:     "u1",
		Status: shopapi.UserActive,
		Raw:    map[string]any{"TrangThai": "1", "hoTen": "Lan"},
	}}}
	c, toasts := newConsole(t, api)

	require.NoError(t, c.ToggleBan(context.Background(), "u1"))
	u, _ := c.Users.Get("u1")
	assert.Equal(t, shopapi.UserBanned, u.Status)
	assert.Equal(t, "0", u.Raw["TrangThai"], "existing key reused")
	assert.Equal(t, "Lan", u.Raw["hoTen"])
	assert.Zero(t, toasts.Count(notify.LevelError))
	assert.Equal(t, shopapi.UserBanned, api.users[0].Status)
}

func TestToggleBan_UnknownUser(t *testing.T) {
	c, _ := newConsole(t, &fakeAPI{})
	err := c.ToggleBan(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestBanSelected_IssuesOneRequestPerIDAndRestoresFailures(t *testing.T) {
	api := &fakeAPI{
		users: []shopapi.User{
			{ID: "a", Status: shopapi.UserActive},
			{ID: "b", Status: shopapi.UserActive},
			{ID: "c", Status: shopapi.UserActive},
		},
		fail: map[string]bool{"b": true},
	}
	c, toasts := newConsole(t, api)
	c.UserSelection.Begin("a")
	c.UserSelection.Toggle("b")
	c.UserSelection.Toggle("c")

	err := c.BanSelected(context.Background())
	var bulkErr *optimistic.BulkError[string]
	require.ErrorAs(t, err, &bulkErr)
	assert.Equal(t, []string{"b"}, bulkErr.Failed)
	assert.Equal(t, 3, bulkErr.Total)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, api.statusCalls)

	assert.Equal(t, shopapi.UserBanned, userStatus(t, c, "a"))
	assert.Equal(t, shopapi.UserActive, userStatus(t, c, "b"))
	assert.Equal(t, shopapi.UserBanned, userStatus(t, c, "c"))
	assert.Equal(t, 1, toasts.Count(notify.LevelError))
	assert.False(t, c.UserSelection.Active(), "submit returns to idle")
}

func settingsFixture() []shopapi.Setting {
	return []shopapi.Setting{
		{ID: 1, Name: "Logo cũ", Type: shopapi.SettingLogo, Status: 1},
		{ID: 2, Name: "Logo mới", Type: shopapi.SettingLogo, Status: 1},
		{ID: 3, Name: "Banner hè", Type: shopapi.SettingBanner, Status: 1},
		{ID: 4, Name: "Slider", Type: shopapi.SettingSlider, Status: 0},
	}
}

func TestLogoConflicts_ResolveAndReload(t *testing.T) {
	api := &fakeAPI{settings: settingsFixture()}
	c, _ := newConsole(t, api)

	conflicts := c.LogoConflicts()
	require.Len(t, conflicts, 2)
	assert.Equal(t, int64(1), conflicts[0].ID)
	assert.Equal(t, int64(2), conflicts[1].ID)

	require.NoError(t, c.ResolveLogo(context.Background(), 2))
	assert.Nil(t, c.LogoConflicts())
	old, _ := c.Settings.Get(1)
	assert.False(t, old.Active(), "server side effect picked up by reload")
	chosen, _ := c.Settings.Get(2)
	assert.True(t, chosen.Active())
}

func TestResolveLogo_RejectsNonLogo(t *testing.T) {
	c, _ := newConsole(t, &fakeAPI{settings: settingsFixture()})
	require.Error(t, c.ResolveLogo(context.Background(), 3))
}

func TestLogoConflicts_SingleActiveLogoIsFine(t *testing.T) {
	settings := settingsFixture()
	settings[0].Status = 0
	assert.Nil(t, LogoConflicts(settings))
}

func TestToggleSetting_FailureRollsBack(t *testing.T) {
	api := &fakeAPI{settings: settingsFixture(), offline: true}
	c, toasts := newConsole(t, api)

	require.Error(t, c.ToggleSetting(context.Background(), 4))
	s, _ := c.Settings.Get(4)
	assert.Equal(t, 0, s.Status)
	assert.Equal(t, 1, toasts.Count(notify.LevelError))
}

func TestHideSettings_AllHiddenAfterReload(t *testing.T) {
	api := &fakeAPI{settings: settingsFixture()}
	c, _ := newConsole(t, api)

	require.NoError(t, c.HideSettings(context.Background(), []int64{2, 3, 3}))
	assert.ElementsMatch(t, []int64{2, 3}, api.settingCalls, "duplicate ids collapse")
	for _, id := range []int64{2, 3} {
		s, _ := c.Settings.Get(id)
		assert.False(t, s.Active())
	}
}

func TestSaveSetting_ValidatesBeforeSending(t *testing.T) {
	api := &fakeAPI{}
	c, _ := newConsole(t, api)

	err := c.SaveSetting(context.Background(), 0, shopapi.SettingInput{Type: 7, Status: 1})
	var ve *validate.Error
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("Tên giao diện"))
	assert.True(t, ve.Has("Loại giao diện"))
	assert.Empty(t, api.created)

	require.NoError(t, c.SaveSetting(context.Background(), 0, shopapi.SettingInput{Name: "Banner Tết", Type: shopapi.SettingBanner, Status: 1}))
	assert.Equal(t, 1, c.Settings.Len(), "list reloaded after create")
}

func TestToggleComment(t *testing.T) {
	api := &fakeAPI{comments: []shopapi.Comment{{ID: 10, Visible: true, Rating: 4}}}
	c, _ := newConsole(t, api)

	require.NoError(t, c.ToggleComment(context.Background(), 10))
	cm, _ := c.Comments.Get(10)
	assert.False(t, cm.Visible)
	assert.False(t, api.comments[0].Visible)
}

func productsFixture() []shopapi.Product {
	return []shopapi.Product{
		{ID: "p1", Name: "Áo thun", Price: decimal.NewFromInt(150000), Stock: 12},
		{ID: "p2", Name: "Quần jean", Price: decimal.NewFromInt(400000), Stock: 3},
		{ID: "p3", Name: "Mũ lưỡi trai", Price: decimal.NewFromInt(90000), Stock: 0},
	}
}

func TestDeleteProducts_RejectedRowReturnsToItsPlace(t *testing.T) {
	api := &fakeAPI{products: productsFixture(), fail: map[string]bool{"p2": true}}
	c, toasts := newConsole(t, api)

	err := c.DeleteProducts(context.Background(), []string{"p1", "p2"}, false)
	require.Error(t, err)
	assert.Contains(t, toasts.All()[0].Message, "Sản phẩm đang có đơn hàng")
	assert.ElementsMatch(t, []string{"p1", "p2"}, api.deleteCalls)

	ids := make([]string, 0)
	for _, p := range c.Products.Items() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p2", "p3"}, ids, "consistent with the reloaded server state")
}

func TestProductSort(t *testing.T) {
	c, _ := newConsole(t, &fakeAPI{products: productsFixture()})

	byPrice := c.SortedProducts(ProductSort{Field: SortByPrice})
	assert.Equal(t, "p3", byPrice[0].ID)
	byStock := c.SortedProducts(ProductSort{Field: SortByStock, Desc: true})
	assert.Equal(t, "p1", byStock[0].ID)

	low := c.Products.Filtered(LowStock(3))
	assert.Len(t, low, 2)
}
