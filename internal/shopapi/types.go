package shopapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the normalized storefront product.
type Product struct {
	ID            string
	Name          string
	Description   string
	Images        []string // resolved media URLs, in backend order
	MediaIDs      []int64  // parallel to Images
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	SalePercent   *int
	Stock         int
	Rating        float64
	ReviewCount   int
	Category      string
	Subcategory   string
	Brand         string
	Tags          []string
	Sizes         []string
	Colors        []string
}

// EffectivePrice is the discounted price when one is set.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// OnSale reports whether a discount applies.
func (p Product) OnSale() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// Category type codes.
const (
	CategoryProductType = 1
	CategoryBrand       = 2
	CategoryHashtag     = 3
)

// Category is a product type, brand or hashtag.
type Category struct {
	ID           int64
	Name         string
	Image        string
	Type         int
	ProductCount *int
}

// TypeLabel names the category type code.
func (c Category) TypeLabel() string {
	return CategoryTypeLabel(c.Type)
}

// CategoryTypeLabel maps type codes: 1 product type, 2 brand, anything
// else hashtag.
func CategoryTypeLabel(code int) string {
	switch code {
	case CategoryProductType:
		return "product type"
	case CategoryBrand:
		return "brand"
	default:
		return "hashtag"
	}
}

// UserStatus is a user's account state.
type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

// Toggle flips active and banned.
func (s UserStatus) Toggle() UserStatus {
	if s == UserBanned {
		return UserActive
	}
	return UserBanned
}

// User is a storefront account. Raw holds the last fetched server record so
// updates can re-submit fields the narrow shape does not model.
type User struct {
	ID        string
	Username  string
	Name      string
	Email     string
	Phone     string
	Avatar    string
	Bio       string
	Gender    string
	BirthDate string
	IsAdmin   bool
	Status    UserStatus
	Raw       map[string]any
}

// Setting types.
const (
	SettingLogo   = 1
	SettingBanner = 2
	SettingSlider = 3
)

// SettingTypeLabel names a setting type code.
func SettingTypeLabel(code int) string {
	switch code {
	case SettingLogo:
		return "Logo"
	case SettingBanner:
		return "Banner"
	case SettingSlider:
		return "Slider"
	default:
		return "Unknown"
	}
}

// Media is an image attached to a setting, product or review.
type Media struct {
	ID     int64
	Path   string // as sent by the backend
	URL    string // Path resolved against the API base
	Alt    string
	Link   string
	Status int
}

// Setting is a GiaoDien record: a logo, banner or slider.
type Setting struct {
	ID              int64
	Name            string
	Type            int
	Description     string
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
	Status          int
	Medias          []Media
}

// Active reports whether the setting is shown.
func (s Setting) Active() bool {
	return s.Status == 1
}

// Comment is a product review.
type Comment struct {
	ID           int64
	Title        string
	Body         string
	Rating       int
	Visible      bool
	AuthorName   string
	AuthorAvatar string
	Medias       []Media
	ProductID    string
	CreatedAt    time.Time
}

// wire shapes

type wireMedia struct {
	ID     flexInt    `json:"maMedia"`
	Path   string     `json:"duongDan"`
	Alt    flexString `json:"altMedia"`
	Link   flexString `json:"linkMedia"`
	Status flexInt    `json:"trangThai"`
}

type wireProduct struct {
	ID          flexString      `json:"maSanPham"`
	Name        string          `json:"tenSanPham"`
	Description string          `json:"moTa"`
	Price       decimal.Decimal `json:"giaBan"`
	SalePrice   decimal.Decimal `json:"giaSauSale"`
	SalePercent flexInt         `json:"phanTramSale"`
	Stock       flexInt         `json:"soLuong"`
	Rating      flexFloat       `json:"danhGiaTrungBinh"`
	ReviewCount flexInt         `json:"soLuongDanhGia"`
	Category    flexString      `json:"tenLoai"`
	Subcategory flexString      `json:"tenDanhMucCon"`
	Brand       flexString      `json:"tenThuongHieu"`
	Tags        flexStrings     `json:"tags"`
	Sizes       flexStrings     `json:"kichThuocs"`
	Colors      flexStrings     `json:"mauSacs"`
	Medias      []wireMedia     `json:"medias"`
}

type wireCategory struct {
	ID           flexInt    `json:"maDanhMuc"`
	Name         string     `json:"tenDanhMuc"`
	Image        flexString `json:"hinhAnh"`
	Type         flexInt    `json:"loaiDanhMuc"`
	ProductCount *flexInt   `json:"soLuongSanPham"`
}

type wireSetting struct {
	ID              flexInt     `json:"maGiaoDien"`
	Name            string      `json:"tenGiaoDien"`
	Type            flexInt     `json:"loaiGiaoDien"`
	Description     flexString  `json:"moTa"`
	MetaTitle       flexString  `json:"metaTitle"`
	MetaDescription flexString  `json:"metaDescription"`
	MetaKeywords    flexString  `json:"metaKeywords"`
	Status          flexInt     `json:"trangThai"`
	Medias          []wireMedia `json:"medias"`
}

type wireComment struct {
	ID        flexInt     `json:"maBinhLuan"`
	Title     flexString  `json:"tieuDe"`
	Body      flexString  `json:"noiDung"`
	Rating    flexInt     `json:"danhGia"`
	Status    flexInt     `json:"trangThai"`
	Author    flexString  `json:"hoTen"`
	Avatar    flexString  `json:"avt"`
	Medias    []wireMedia `json:"medias"`
	ProductID flexString  `json:"maSanPham"`
	CreatedAt flexString  `json:"ngayTao"`
}

func (c *Client) toProduct(w wireProduct) Product {
	p := Product{
		ID:          strings.TrimSpace(string(w.ID)),
		Name:        w.Name,
		Description: w.Description,
		Price:       w.Price,
		Stock:       int(w.Stock),
		Rating:      float64(w.Rating),
		ReviewCount: int(w.ReviewCount),
		Category:    string(w.Category),
		Subcategory: string(w.Subcategory),
		Brand:       string(w.Brand),
		Tags:        []string(w.Tags),
		Sizes:       nonNil(w.Sizes),
		Colors:      nonNil(w.Colors),
	}
	if w.SalePrice.IsPositive() {
		sale := w.SalePrice
		p.DiscountPrice = &sale
	}
	if w.SalePercent > 0 {
		pct := int(w.SalePercent)
		p.SalePercent = &pct
	}
	for _, m := range w.Medias {
		if strings.TrimSpace(m.Path) == "" {
			continue
		}
		p.Images = append(p.Images, c.ResolveMedia(m.Path))
		p.MediaIDs = append(p.MediaIDs, int64(m.ID))
	}
	return p
}

func toCategory(w wireCategory) Category {
	c := Category{
		ID:    int64(w.ID),
		Name:  w.Name,
		Image: string(w.Image),
		Type:  int(w.Type),
	}
	if w.ProductCount != nil {
		n := int(*w.ProductCount)
		c.ProductCount = &n
	}
	return c
}

func (c *Client) toMedias(in []wireMedia) []Media {
	if len(in) == 0 {
		return nil
	}
	out := make([]Media, 0, len(in))
	for _, m := range in {
		out = append(out, Media{
			ID:     int64(m.ID),
			Path:   m.Path,
			URL:    c.ResolveMedia(m.Path),
			Alt:    string(m.Alt),
			Link:   string(m.Link),
			Status: int(m.Status),
		})
	}
	return out
}

func (c *Client) toSetting(w wireSetting) Setting {
	return Setting{
		ID:              int64(w.ID),
		Name:            w.Name,
		Type:            int(w.Type),
		Description:     string(w.Description),
		MetaTitle:       string(w.MetaTitle),
		MetaDescription: string(w.MetaDescription),
		MetaKeywords:    string(w.MetaKeywords),
		Status:          int(w.Status),
		Medias:          c.toMedias(w.Medias),
	}
}

func (c *Client) toComment(w wireComment) Comment {
	out := Comment{
		ID:           int64(w.ID),
		Title:        string(w.Title),
		Body:         string(w.Body),
		Rating:       int(w.Rating),
		Visible:      w.Status == 1,
		AuthorName:   string(w.Author),
		AuthorAvatar: c.ResolveMedia(string(w.Avatar)),
		Medias:       c.toMedias(w.Medias),
		ProductID:    string(w.ProductID),
	}
	if ts := strings.TrimSpace(string(w.CreatedAt)); ts != "" {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, ts); err == nil {
				out.CreatedAt = t
				break
			}
		}
	}
	return out
}

// toUser normalizes a raw user record. Field names vary in casing between
// endpoints so lookups are case-insensitive.
func (c *Client) toUser(raw map[string]any) User {
	u := User{Raw: raw}
	u.ID = rawString(raw, "maNguoiDung", "id")
	u.Username = rawString(raw, "taiKhoan", "username")
	u.Name = rawString(raw, "hoTen", "name")
	u.Email = rawString(raw, "email")
	u.Phone = rawString(raw, "soDienThoai", "phone")
	u.Avatar = c.ResolveMedia(rawString(raw, "avt", "avatar"))
	u.Bio = rawString(raw, "tieuSu", "bio")
	u.Gender = rawString(raw, "gioiTinh", "gender")
	u.BirthDate = rawString(raw, "ngaySinh", "birthDate")
	role := strings.ToLower(rawString(raw, "vaiTro", "role"))
	u.IsAdmin = role == "admin" || role == "1"
	u.Status = UserActive
	if status := rawString(raw, "trangThai", "status"); status == "0" || strings.EqualFold(status, "false") || strings.EqualFold(status, "banned") {
		u.Status = UserBanned
	}
	return u
}

func rawValue(raw map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
		for k, v := range raw {
			if strings.EqualFold(k, key) && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

func rawString(raw map[string]any, keys ...string) string {
	v, ok := rawValue(raw, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
