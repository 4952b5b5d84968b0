package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/five82/shopdesk/internal/media"
)

const productsPath = "/api/SanPham"

// ProductFilter configures /api/SanPham/filter.
type ProductFilter struct {
	Keyword  string
	Page     int
	PageSize int
	SortBy   string // newest, price_asc, price_desc, popular, ...
	TypeID   int64  // maLoai
	BrandID  int64  // maThuongHieu
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Gender   string // gioiTinh
}

// Values encodes the filter. keyword, page and pageSize are always sent.
func (f ProductFilter) Values() url.Values {
	values := url.Values{}
	values.Set("keyword", strings.TrimSpace(f.Keyword))
	values.Set("page", strconv.Itoa(max(f.Page, 1)))
	values.Set("pageSize", strconv.Itoa(pageSizeOr(f.PageSize)))
	if s := strings.TrimSpace(f.SortBy); s != "" {
		values.Set("sortBy", s)
	}
	if f.TypeID > 0 {
		values.Set("maLoai", strconv.FormatInt(f.TypeID, 10))
	}
	if f.BrandID > 0 {
		values.Set("maThuongHieu", strconv.FormatInt(f.BrandID, 10))
	}
	if f.MinPrice != nil {
		values.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		values.Set("maxPrice", f.MaxPrice.String())
	}
	if g := strings.TrimSpace(f.Gender); g != "" {
		values.Set("gioiTinh", g)
	}
	return values
}

const defaultPageSize = 12

func pageSizeOr(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	return n
}

func pageValues(page, pageSize int) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(max(page, 1)))
	values.Set("pageSize", strconv.Itoa(pageSizeOr(pageSize)))
	return values
}

// FilterProducts searches the catalogue.
func (c *Client) FilterProducts(ctx context.Context, f ProductFilter) (Page[Product], error) {
	return getPage(ctx, c, productsPath+"/filter", f.Values(), c.toProduct)
}

// NewestProducts lists the most recent products.
func (c *Client) NewestProducts(ctx context.Context, page, pageSize int) (Page[Product], error) {
	return getPage(ctx, c, productsPath+"/newest", pageValues(page, pageSize), c.toProduct)
}

// HotSaleProducts lists discounted products.
func (c *Client) HotSaleProducts(ctx context.Context, page, pageSize int) (Page[Product], error) {
	return getPage(ctx, c, productsPath+"/hot-sale", pageValues(page, pageSize), c.toProduct)
}

// Product fetches one product. A missing product is a KindNotFound error.
func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, fmt.Errorf("product id required")
	}
	return getOne(ctx, c, productsPath+"/"+url.PathEscape(id), c.toProduct)
}

// ProductInput is the multipart payload for create and update.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	Stock       int
	TypeID      int64
	BrandID     int64
	Gender      string
	Sizes       []string
	Colors      []string
	Tags        []string
	Images      []media.File
}

func (in ProductInput) form() *media.Form {
	form := media.NewForm().
		Set("TenSanPham", in.Name).
		SetOptional("MoTa", in.Description).
		Set("GiaBan", in.Price.String()).
		SetInt("SoLuong", in.Stock).
		SetOptional("GioiTinh", in.Gender)
	if in.SalePrice != nil {
		form.Set("GiaSauSale", in.SalePrice.String())
	}
	if in.TypeID > 0 {
		form.Set("MaLoai", strconv.FormatInt(in.TypeID, 10))
	}
	if in.BrandID > 0 {
		form.Set("MaThuongHieu", strconv.FormatInt(in.BrandID, 10))
	}
	for _, s := range in.Sizes {
		form.SetOptional("KichThuocs", s)
	}
	for _, s := range in.Colors {
		form.SetOptional("MauSacs", s)
	}
	for _, s := range in.Tags {
		form.SetOptional("Tags", s)
	}
	return form.Add(media.FieldImages, in.Images...)
}

// CreateProduct posts a new product with its images.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	return send(ctx, c, Request{Method: http.MethodPost, Path: productsPath, Form: in.form()})
}

// UpdateProduct replaces product fields; attached images are appended.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	return send(ctx, c, Request{Method: http.MethodPut, Path: productsPath + "/" + url.PathEscape(id), Form: in.form()})
}

// DeleteProduct removes a product, optionally deleting its image files.
func (c *Client) DeleteProduct(ctx context.Context, id string, hardDeleteImages bool) error {
	q := url.Values{}
	q.Set("hardDeleteImages", strconv.FormatBool(hardDeleteImages))
	return send(ctx, c, Request{Method: http.MethodDelete, Path: productsPath + "/" + url.PathEscape(id), Query: q})
}

// DeleteProductImage detaches one image.
func (c *Client) DeleteProductImage(ctx context.Context, productID string, mediaID int64, hardDelete bool) error {
	q := url.Values{}
	q.Set("hardDelete", strconv.FormatBool(hardDelete))
	path := fmt.Sprintf("%s/%s/images/%d", productsPath, url.PathEscape(productID), mediaID)
	return send(ctx, c, Request{Method: http.MethodDelete, Path: path, Query: q})
}

// DeleteProductImages detaches several images in one call.
func (c *Client) DeleteProductImages(ctx context.Context, productID string, mediaIDs []int64, hardDelete bool) error {
	body := struct {
		MediaIDs   []int64 `json:"mediaIds"`
		HardDelete bool    `json:"hardDelete"`
	}{MediaIDs: mediaIDs, HardDelete: hardDelete}
	path := fmt.Sprintf("%s/%s/images/batch", productsPath, url.PathEscape(productID))
	return send(ctx, c, Request{Method: http.MethodDelete, Path: path, Body: body})
}
