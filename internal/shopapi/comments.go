package shopapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/five82/shopdesk/internal/media"
)

const commentsPath = "/api/BinhLuan"

// CommentQuery configures the admin comment list.
type CommentQuery struct {
	Page     int
	PageSize int
	Status   *int // trangThai; nil lists both
	Keyword  string
}

// Comments lists reviews for moderation.
func (c *Client) Comments(ctx context.Context, q CommentQuery) (Page[Comment], error) {
	values := pageValues(q.Page, q.PageSize)
	if q.Status != nil {
		values.Set("trangThai", strconv.Itoa(*q.Status))
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		values.Set("keyword", kw)
	}
	return getPage(ctx, c, commentsPath, values, c.toComment)
}

// ProductComments lists the reviews of one product.
func (c *Client) ProductComments(ctx context.Context, productID string) ([]Comment, error) {
	page, err := getPage(ctx, c, commentsPath+"/san-pham/"+url.PathEscape(productID), nil, c.toComment)
	return page.Items, err
}

// SetCommentVisible shows or hides a review.
func (c *Client) SetCommentVisible(ctx context.Context, id int64, visible bool) error {
	status := 0
	if visible {
		status = 1
	}
	body := map[string]int{"trangThai": status}
	return send(ctx, c, Request{Method: http.MethodPatch, Path: fmt.Sprintf("%s/%d/trang-thai", commentsPath, id), Body: body})
}

// ReviewInput is a new review with optional photos.
type ReviewInput struct {
	UserID    string
	ProductID string
	Rating    int
	Title     string
	Body      string
	Images    []media.File
}

// CreateReview posts a review.
func (c *Client) CreateReview(ctx context.Context, in ReviewInput) error {
	if in.Rating < 1 || in.Rating > 5 {
		return fmt.Errorf("rating %d out of range 1-5", in.Rating)
	}
	form := media.NewForm().
		Set("MaNguoiDung", in.UserID).
		Set("MaSanPham", in.ProductID).
		SetInt("DanhGia", in.Rating).
		SetOptional("TieuDe", in.Title).
		Set("NoiDung", in.Body).
		Add(media.FieldImages, in.Images...)
	return send(ctx, c, Request{Method: http.MethodPost, Path: commentsPath, Form: form})
}
