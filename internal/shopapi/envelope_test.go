package shopapi

import (
	"context"
	"net/http"
	"testing"
)

func TestDecodePage_Shapes(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "http://shop.test"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	tests := []struct {
		name      string
		body      string
		wantLen   int
		wantPage  int
		wantTotal int
	}{
		{"bare array", `[{"maSanPham":1},{"maSanPham":"2"},{"maSanPham":3}]`, 3, 1, 1},
		{"envelope", `{"data":[{"maSanPham":1}],"pagination":{"currentPage":2,"totalPages":5}}`, 1, 2, 5},
		{"envelope without pagination", `{"data":[{"maSanPham":1},{"maSanPham":2}]}`, 2, 1, 1},
		{"string pagination", `{"data":[],"pagination":{"currentPage":"3","totalPages":"4"}}`, 0, 3, 4},
		{"object without data", `{"message":"ok"}`, 0, 1, 1},
		{"data not a list", `{"data":{"maSanPham":1}}`, 0, 1, 1},
		{"empty body", ``, 0, 1, 1},
		{"null", `null`, 0, 1, 1},
		{"garbage", `<html>`, 0, 1, 1},
		{"bad element", `[{"soLuong":{}}]`, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := decodePage([]byte(tt.body), c.toProduct)
			if len(page.Items) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(page.Items), tt.wantLen)
			}
			if page.Page != tt.wantPage || page.TotalPages != tt.wantTotal {
				t.Fatalf("page = %d/%d, want %d/%d", page.Page, page.TotalPages, tt.wantPage, tt.wantTotal)
			}
		})
	}
}

func TestProduct_NormalizesWireFields(t *testing.T) {
	body := `{
		"maSanPham": 42,
		"tenSanPham": "Giày",
		"giaBan": 500000,
		"giaSauSale": "450000",
		"phanTramSale": 10,
		"soLuong": "7",
		"danhGiaTrungBinh": 4.5,
		"tenLoai": "Sneaker",
		"tags": "sale, new",
		"kichThuocs": [{"tenKichThuoc": "42"}, "43"],
		"medias": [{"maMedia": 9, "duongDan": "/uploads/g.jpg"}, {"maMedia": 10, "duongDan": ""}]
	}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/SanPham/42" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}), Options{})

	p, err := c.Product(context.Background(), "42")
	if err != nil {
		t.Fatalf("Product returned error: %v", err)
	}
	if p.ID != "42" || p.Name != "Giày" || p.Stock != 7 || p.Category != "Sneaker" {
		t.Fatalf("product = %#v", p)
	}
	if p.DiscountPrice == nil || p.DiscountPrice.String() != "450000" || !p.OnSale() {
		t.Fatalf("discount = %v, want 450000", p.DiscountPrice)
	}
	if p.EffectivePrice().String() != "450000" {
		t.Fatalf("effective price = %s", p.EffectivePrice())
	}
	if p.SalePercent == nil || *p.SalePercent != 10 {
		t.Fatalf("sale percent = %v, want 10", p.SalePercent)
	}
	if len(p.Tags) != 2 || p.Tags[1] != "new" {
		t.Fatalf("tags = %v", p.Tags)
	}
	if len(p.Sizes) != 2 || p.Sizes[0] != "42" {
		t.Fatalf("sizes = %v", p.Sizes)
	}
	if p.Colors == nil || len(p.Colors) != 0 {
		t.Fatalf("colors = %#v, want empty slice", p.Colors)
	}
	if len(p.Images) != 1 || p.Images[0] != c.BaseURL()+"/uploads/g.jpg" {
		t.Fatalf("images = %v", p.Images)
	}
}

func TestProduct_NotFoundAndUndecodable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/SanPham/bad":
			_, _ = w.Write([]byte(`[1,2]`))
		default:
			http.NotFound(w, r)
		}
	}), Options{})

	if _, err := c.Product(context.Background(), "5"); !IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := c.Product(context.Background(), "bad"); KindOf(err) != KindDecode {
		t.Fatalf("kind = %v, want decode", KindOf(err))
	}
}

func TestCategoryTypeLabel(t *testing.T) {
	for code, want := range map[int]string{1: "product type", 2: "brand", 3: "hashtag", 9: "hashtag"} {
		if got := CategoryTypeLabel(code); got != want {
			t.Fatalf("CategoryTypeLabel(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestToUser_RolesAndStatus(t *testing.T) {
	c, _ := NewClient(Options{})
	u := c.toUser(map[string]any{"maNguoiDung": float64(3), "VaiTro": "Admin", "trangThai": float64(0)})
	if u.ID != "3" || !u.IsAdmin || u.Status != UserBanned {
		t.Fatalf("user = %#v", u)
	}
	u = c.toUser(map[string]any{"maNguoiDung": "4", "vaiTro": "user"})
	if u.IsAdmin || u.Status != UserActive {
		t.Fatalf("user = %#v", u)
	}
}

func TestMessageFromBody(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"gone"}`, "gone"},
		{`{"title":"Bad","errors":{"Email":["Email không hợp lệ"]}}`, "Bad"},
		{`{"errors":{"Email":["Email không hợp lệ"]}}`, "Email không hợp lệ"},
		{`"plain json string"`, "plain json string"},
		{`Tài khoản đã tồn tại`, "Tài khoản đã tồn tại"},
		{`<html><body>oops</body></html>`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		if got := messageFromBody([]byte(tt.body)); got != tt.want {
			t.Fatalf("messageFromBody(%q) = %q, want %q", tt.body, got, tt.want)
		}
	}
}
