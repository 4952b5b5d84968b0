package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopdesk/internal/listing"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleBook() *Book {
	return NewBook(DefaultPricing, Sample(now))
}

func TestTotals(t *testing.T) {
	b := sampleBook()

	o, err := b.Get("DH1001")
	require.NoError(t, err)
	assert.Equal(t, "240000", o.Subtotal.String(), "discount price used")
	assert.Equal(t, "30000", o.ShippingCost.String())
	assert.Equal(t, "24000", o.Tax.String())
	assert.Equal(t, "294000", o.Total.String())

	o, err = b.Get("DH1002")
	require.NoError(t, err)
	assert.Equal(t, "540000", o.Subtotal.String())
	assert.True(t, o.ShippingCost.IsZero(), "free shipping from 500.000đ")
	assert.Equal(t, "594000", o.Total.String())
	assert.Equal(t, 2, o.Quantity())
}

func TestTotals_EmptyOrderIsFree(t *testing.T) {
	o := DefaultPricing.Totals(Order{})
	assert.True(t, o.Total.Equal(decimal.Zero))
}

func TestTransitions_ForwardOnly(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{Pending, Processing, true},
		{Processing, Shipped, true},
		{Shipped, Delivered, true},
		{Pending, Shipped, false},
		{Shipped, Processing, false},
		{Delivered, Shipped, false},
		{Pending, Cancelled, true},
		{Processing, Cancelled, true},
		{Shipped, Cancelled, false},
		{Cancelled, Pending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBook_AdvanceAndCancel(t *testing.T) {
	b := sampleBook()

	o, err := b.Advance("DH1001")
	require.NoError(t, err)
	assert.Equal(t, Processing, o.Status)

	_, err = b.Advance("DH1004")
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, Delivered, te.From)

	_, err = b.Cancel("DH1003")
	require.ErrorAs(t, err, &te, "shipped orders cannot be cancelled")

	o, err = b.Cancel("DH1002")
	require.NoError(t, err)
	assert.Equal(t, Cancelled, o.Status)
	assert.True(t, o.Status.Final())

	_, err = b.Advance("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBook_PlaceAssignsIDAndPending(t *testing.T) {
	b := NewBook(DefaultPricing, nil)
	b.now = func() time.Time { return now }
	o := b.Place(Order{Status: Delivered, Items: Sample(now)[0].Items})
	assert.Equal(t, "DH1001", o.ID)
	assert.Equal(t, Pending, o.Status)
	assert.Equal(t, now, o.PlacedAt)
	assert.Equal(t, "294000", o.Total.String())
}

func TestBook_FetchFiltersSortsAndPages(t *testing.T) {
	b := sampleBook()
	ctx := context.Background()

	page, err := b.Fetch(ctx, listing.Query{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "DH1001", page.Items[0].ID, "newest first")

	page, err = b.Fetch(ctx, listing.Query{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = b.Fetch(ctx, listing.Query{Keyword: "lan", Filters: map[string]string{FilterStatus: string(Delivered)}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "DH1004", page.Items[0].ID)

	page, err = b.Fetch(ctx, listing.Query{SortBy: SortTotal})
	require.NoError(t, err)
	assert.Equal(t, "DH1003", page.Items[0].ID, "largest total first")
}

func TestBook_WorksAsListFetcher(t *testing.T) {
	b := sampleBook()
	l := listing.New(b.Fetch, func(o Order) string { return o.ID }, listing.Options{})
	require.NoError(t, l.Load(context.Background(), listing.Query{PageSize: 3}))
	assert.Equal(t, 3, l.Len())

	more, err := l.LoadMore(context.Background())
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 5, l.Len())
}

func TestBook_CountsAndRevenue(t *testing.T) {
	b := sampleBook()
	counts := b.CountByStatus()
	for _, s := range Statuses {
		assert.Equal(t, 1, counts[s], s.Label())
	}
	// DH1004: 3 x 90.000 + 30.000 shipping + 27.000 VAT
	assert.Equal(t, "327000", b.Revenue().String())
}
