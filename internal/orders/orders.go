// Package orders is the admin order book. The backend has no order list
// endpoint, so orders live in memory, seeded with sample data. Status only
// moves forward; cancellation is allowed until an order ships.
package orders

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/shopapi"
)

// Status is an order's fulfilment state.
type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Shipped    Status = "shipped"
	Delivered  Status = "delivered"
	Cancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{Pending, Processing, Shipped, Delivered, Cancelled}

var forward = map[Status]Status{
	Pending:    Processing,
	Processing: Shipped,
	Shipped:    Delivered,
}

// Label is the Vietnamese display name.
func (s Status) Label() string {
	switch s {
	case Pending:
		return "Chờ xử lý"
	case Processing:
		return "Đang xử lý"
	case Shipped:
		return "Đang giao"
	case Delivered:
		return "Đã giao"
	case Cancelled:
		return "Đã hủy"
	default:
		return string(s)
	}
}

// Next returns the following status, false for terminal ones.
func (s Status) Next() (Status, bool) {
	next, ok := forward[s]
	return next, ok
}

// Final reports whether no further transition is possible.
func (s Status) Final() bool {
	return s == Delivered || s == Cancelled
}

// CanTransition reports whether s may move to to.
func (s Status) CanTransition(to Status) bool {
	if to == Cancelled {
		return s == Pending || s == Processing
	}
	next, ok := forward[s]
	return ok && next == to
}

// ErrNotFound is returned for an unknown order id.
var ErrNotFound = errors.New("order not found")

// TransitionError is a rejected status change.
type TransitionError struct {
	ID       string
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

// CartItem is one order line.
type CartItem struct {
	Product  shopapi.Product
	Quantity int
	Size     string
	Color    string
}

// LineTotal is the effective unit price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Order is an admin-visible order with computed totals.
type Order struct {
	ID            string
	UserID        string
	Customer      string
	Items         []CartItem
	Status        Status
	Address       string
	PaymentMethod string
	PlacedAt      time.Time
	Subtotal      decimal.Decimal
	ShippingCost  decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// Quantity sums the line quantities.
func (o Order) Quantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Pricing computes totals.
type Pricing struct {
	Shipping         decimal.Decimal
	FreeShippingFrom decimal.Decimal // zero disables free shipping
	TaxRate          decimal.Decimal
}

// DefaultPricing is a flat 30.000đ shipping fee waived from 500.000đ, with
// 10% VAT on the subtotal.
var DefaultPricing = Pricing{
	Shipping:         decimal.NewFromInt(30000),
	FreeShippingFrom: decimal.NewFromInt(500000),
	TaxRate:          decimal.NewFromFloat(0.1),
}

// Totals fills o's money fields from its items.
func (p Pricing) Totals(o Order) Order {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	shipping := p.Shipping
	if len(o.Items) == 0 || (!p.FreeShippingFrom.IsZero() && subtotal.GreaterThanOrEqual(p.FreeShippingFrom)) {
		shipping = decimal.Zero
	}
	o.Subtotal = subtotal
	o.ShippingCost = shipping
	o.Tax = subtotal.Mul(p.TaxRate).Round(0)
	o.Total = subtotal.Add(shipping).Add(o.Tax)
	return o
}

// Filter keys understood by Book.Fetch.
const FilterStatus = "status"

// Sort fields understood by Book.Fetch.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortTotal   = "total"
	SortTotalLo = "total-asc"
)

// Book holds the in-memory orders.
type Book struct {
	mu      sync.RWMutex
	pricing Pricing
	orders  []Order
	now     func() time.Time
}

// NewBook returns a book holding orders with totals computed by pricing.
func NewBook(pricing Pricing, orders []Order) *Book {
	b := &Book{pricing: pricing, now: time.Now}
	for _, o := range orders {
		b.orders = append(b.orders, pricing.Totals(o))
	}
	return b
}

// Place adds a new pending order.
func (b *Book) Place(o Order) Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o.ID == "" {
		o.ID = "DH" + strconv.Itoa(1001+len(b.orders))
	}
	if o.PlacedAt.IsZero() {
		o.PlacedAt = b.now()
	}
	o.Status = Pending
	o = b.pricing.Totals(o)
	b.orders = append(b.orders, o)
	return o
}

// Get returns one order.
func (b *Book) Get(id string) (Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Transition moves an order to status to. Only forward moves and
// cancellation before shipping are accepted.
func (b *Book) Transition(id string, to Status) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.orders {
		if o.ID != id {
			continue
		}
		if !o.Status.CanTransition(to) {
			return o, &TransitionError{ID: id, From: o.Status, To: to}
		}
		b.orders[i].Status = to
		return b.orders[i], nil
	}
	return Order{}, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// Advance moves an order one step forward.
func (b *Book) Advance(id string) (Order, error) {
	o, err := b.Get(id)
	if err != nil {
		return o, err
	}
	next, ok := o.Status.Next()
	if !ok {
		return o, &TransitionError{ID: id, From: o.Status, To: o.Status}
	}
	return b.Transition(id, next)
}

// Cancel cancels a pending or processing order.
func (b *Book) Cancel(id string) (Order, error) {
	return b.Transition(id, Cancelled)
}

// All returns every order, newest first.
func (b *Book) All() []Order {
	b.mu.RLock()
	out := slices.Clone(b.orders)
	b.mu.RUnlock()
	slices.SortStableFunc(out, Compare(SortNewest))
	return out
}

// Fetch serves the book as a paginated list. It matches the listing fetcher
// signature so the order view shares the list machinery.
func (b *Book) Fetch(ctx context.Context, q listing.Query) (shopapi.Page[Order], error) {
	if err := ctx.Err(); err != nil {
		return shopapi.Page[Order]{}, err
	}
	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))
	status := Status(q.Filters[FilterStatus])

	var matched []Order
	for _, o := range b.All() {
		if status != "" && o.Status != status {
			continue
		}
		if keyword != "" && !o.matches(keyword) {
			continue
		}
		matched = append(matched, o)
	}
	slices.SortStableFunc(matched, Compare(q.SortBy))

	size := q.PageSize
	if size <= 0 {
		size = 12
	}
	page := max(q.Page, 1)
	total := max((len(matched)+size-1)/size, 1)
	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))
	return shopapi.Page[Order]{Items: matched[start:end], Page: page, TotalPages: total}, nil
}

func (o Order) matches(keyword string) bool {
	for _, field := range []string{o.ID, o.UserID, o.Customer, o.Address} {
		if strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}

// Compare returns the ordering for a sort key. Unknown keys sort newest
// first.
func Compare(sortBy string) func(a, b Order) int {
	switch sortBy {
	case SortOldest:
		return func(a, b Order) int { return a.PlacedAt.Compare(b.PlacedAt) }
	case SortTotal:
		return func(a, b Order) int { return b.Total.Cmp(a.Total) }
	case SortTotalLo:
		return func(a, b Order) int { return a.Total.Cmp(b.Total) }
	default:
		return func(a, b Order) int { return b.PlacedAt.Compare(a.PlacedAt) }
	}
}

// CountByStatus tallies orders per status.
func (b *Book) CountByStatus() map[Status]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := make(map[Status]int, len(Statuses))
	for _, o := range b.orders {
		counts[o.Status]++
	}
	return counts
}

// Revenue sums the totals of delivered orders.
func (b *Book) Revenue() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sum := decimal.Zero
	for _, o := range b.orders {
		if o.Status == Delivered {
			sum = sum.Add(o.Total)
		}
	}
	return sum
}
