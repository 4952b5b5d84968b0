package admin

import (
	"cmp"
	"context"
	"strings"

	"github.com/five82/shopdesk/internal/optimistic"
	"github.com/five82/shopdesk/internal/shopapi"
)

type removed struct {
	product shopapi.Product
	index   int
}

// DeleteProducts removes every listed product, one request each. Rows leave
// the list at once; rejected ones are put back where they were and the list
// is reloaded.
func (c *Console) DeleteProducts(ctx context.Context, ids []string, hardDeleteImages bool) error {
	err := optimistic.Bulk[string, removed]{
		IDs: ids,
		Capture: func(id string) (removed, bool) {
			i := c.Products.Index(id)
			if i < 0 {
				return removed{}, false
			}
			p, ok := c.Products.Get(id)
			return removed{product: p, index: i}, ok
		},
		Apply: func(id string, _ removed) {
			c.Products.Remove(id)
		},
		Restore: func(_ string, previous removed) {
			c.Products.Insert(previous.index, previous.product)
		},
		Commit: func(ctx context.Context, id string) error {
			return c.api.DeleteProduct(ctx, id, hardDeleteImages)
		},
		Reload:   c.Products.Refresh,
		Limit:    c.limit,
		Notifier: c.notifier,
		Describe: "Xóa sản phẩm",
	}.Run(ctx)
	c.logRollback("bulk delete products", ids, err)
	return err
}

// DeleteSelected deletes the selected products and leaves selection mode.
func (c *Console) DeleteSelected(ctx context.Context, hardDeleteImages bool) error {
	return c.DeleteProducts(ctx, c.ProductSelection.Submit(), hardDeleteImages)
}

// ProductSortField names a client-side sort column.
type ProductSortField string

const (
	SortByName  ProductSortField = "name"
	SortByPrice ProductSortField = "price"
	SortByStock ProductSortField = "stock"
)

// ProductSort orders the loaded page only; the server is not asked again.
type ProductSort struct {
	Field ProductSortField
	Desc  bool
}

// Compare orders two products by the sort field.
func (s ProductSort) Compare(a, b shopapi.Product) int {
	var n int
	switch s.Field {
	case SortByPrice:
		n = a.EffectivePrice().Cmp(b.EffectivePrice())
	case SortByStock:
		n = cmp.Compare(a.Stock, b.Stock)
	default:
		n = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
	if s.Desc {
		return -n
	}
	return n
}

// SortedProducts returns the loaded page in s order.
func (c *Console) SortedProducts(s ProductSort) []shopapi.Product {
	return c.Products.Sorted(s.Compare)
}

// LowStock keeps products with stock at or below threshold.
func LowStock(threshold int) func(shopapi.Product) bool {
	return func(p shopapi.Product) bool { return p.Stock <= threshold }
}
