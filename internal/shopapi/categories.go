package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/five82/shopdesk/internal/media"
)

const categoriesPath = "/api/DanhMuc"

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	page, err := getPage(ctx, c, categoriesPath, nil, toCategory)
	return page.Items, err
}

// CategoriesByType lists categories of one type code.
func (c *Client) CategoriesByType(ctx context.Context, typeCode int) ([]Category, error) {
	page, err := getPage(ctx, c, categoriesPath+"/loai/"+strconv.Itoa(typeCode), nil, toCategory)
	return page.Items, err
}

// Category fetches one category.
func (c *Client) Category(ctx context.Context, id int64) (Category, error) {
	return getOne(ctx, c, fmt.Sprintf("%s/%d", categoriesPath, id), toCategory)
}

// CategoryInput is the multipart payload for create and update.
type CategoryInput struct {
	Name  string
	Type  int
	Image *media.File
}

func (in CategoryInput) form() *media.Form {
	form := media.NewForm().
		Set("TenDanhMuc", in.Name).
		SetInt("LoaiDanhMuc", in.Type)
	if in.Image != nil {
		form.Add(media.FieldImageFile, *in.Image)
	}
	return form
}

// CreateCategory posts a new category.
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) error {
	return send(ctx, c, Request{Method: http.MethodPost, Path: categoriesPath, Form: in.form()})
}

// UpdateCategory replaces a category.
func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryInput) error {
	return send(ctx, c, Request{Method: http.MethodPut, Path: fmt.Sprintf("%s/%d", categoriesPath, id), Form: in.form()})
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return send(ctx, c, Request{Method: http.MethodDelete, Path: fmt.Sprintf("%s/%d", categoriesPath, id)})
}
