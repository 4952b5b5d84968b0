package shopapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/shopdesk/internal/media"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts.BaseURL = server.URL
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Millisecond
	}
	c, err := NewClient(opts)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("default = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("shop.example.com:8080/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "http://shop.example.com:8080" {
		t.Fatalf("url = %q, want http://shop.example.com:8080", u.String())
	}
}

func TestClient_RetriesTransientGET(t *testing.T) {
	var calls atomic.Int32
	var mu sync.Mutex
	ids := map[string]bool{}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids[r.Header.Get(requestIDHeader)] = true
		mu.Unlock()
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}), Options{RetryCount: 2})

	if _, err := c.NewestProducts(context.Background(), 1, 12); err != nil {
		t.Fatalf("NewestProducts returned error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if len(ids) != 1 {
		t.Fatalf("request ids = %v, want one id reused across attempts", ids)
	}
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}), Options{RetryCount: 2})

	_, err := c.NewestProducts(context.Background(), 1, 12)
	if KindOf(err) != KindServer {
		t.Fatalf("kind = %v, want server (err %v)", KindOf(err), err)
	}
	if !IsTransient(err) {
		t.Fatalf("IsTransient = false, want true")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if msg := Message(err); msg != "502 Bad Gateway" {
		t.Fatalf("message = %q, want 502 Bad Gateway", msg)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"title":"One or more validation errors occurred.","message":"Sai mật khẩu"}`))
	}), Options{RetryCount: 3})

	_, err := c.NewestProducts(context.Background(), 1, 12)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Kind != KindClient || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("error = %#v, want client 400", apiErr)
	}
	if apiErr.Message != "Sai mật khẩu" {
		t.Fatalf("message = %q, want Sai mật khẩu", apiErr.Message)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestClient_DoesNotRetryWrites(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), Options{RetryCount: 3})

	err := c.DeleteCategory(context.Background(), 4)
	if KindOf(err) != KindServer {
		t.Fatalf("kind = %v, want server", KindOf(err))
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestClient_CanceledContextIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}), Options{RetryCount: 3})

	_, err := c.HotSaleProducts(ctx, 1, 10)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestClient_Timeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}), Options{Timeout: 20 * time.Millisecond, RetryCount: -1})

	_, err := c.NewestProducts(context.Background(), 1, 12)
	if KindOf(err) != KindTimeout {
		t.Fatalf("kind = %v, want timeout (err %v)", KindOf(err), err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(Options{BaseURL: url, RetryCount: -1})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.NewestProducts(context.Background(), 1, 12)
	if KindOf(err) != KindNetwork {
		t.Fatalf("kind = %v, want network (err %v)", KindOf(err), err)
	}
}

func TestClient_HeadersAndAuth(t *testing.T) {
	var gotJSON, gotGet http.Header
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gotGet = r.Header.Clone()
			_, _ = w.Write([]byte(`[]`))
			return
		}
		gotJSON = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}), Options{Tokens: staticToken("abc"), UserAgent: "shopdesk/test"})

	if _, err := c.Settings(context.Background(), SettingLogo); err != nil {
		t.Fatalf("Settings returned error: %v", err)
	}
	if err := c.SetCommentVisible(context.Background(), 3, true); err != nil {
		t.Fatalf("SetCommentVisible returned error: %v", err)
	}

	if gotGet.Get("Authorization") != "Bearer abc" {
		t.Fatalf("Authorization = %q, want Bearer abc", gotGet.Get("Authorization"))
	}
	if gotGet.Get("Accept") != "application/json" || gotGet.Get("User-Agent") != "shopdesk/test" {
		t.Fatalf("default headers = %v", gotGet)
	}
	if ct := gotGet.Get("Content-Type"); ct != "" {
		t.Fatalf("GET Content-Type = %q, want empty", ct)
	}
	if ct := gotJSON.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("PATCH Content-Type = %q, want application/json", ct)
	}
}

func TestClient_CreateProductMultipart(t *testing.T) {
	type part struct{ name, contentType string }
	var (
		contentType string
		fields      map[string][]string
		files       []part
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/SanPham" {
			http.NotFound(w, r)
			return
		}
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields = r.MultipartForm.Value
		for _, fh := range r.MultipartForm.File["Images"] {
			files = append(files, part{fh.Filename, fh.Header.Get("Content-Type")})
		}
		w.WriteHeader(http.StatusCreated)
	}), Options{})

	err := c.CreateProduct(context.Background(), ProductInput{
		Name:  "Áo thun",
		Price: decimal.RequireFromString("199000"),
		Stock: 5,
		Sizes: []string{"M", "L"},
		Images: []media.File{
			media.FromBytes("front view.png", "", []byte("x")),
			media.FromBytes("back", "image/webp", []byte("y")),
		},
	})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
		t.Fatalf("Content-Type = %q, want multipart with boundary", contentType)
	}
	if got := fields["TenSanPham"]; len(got) != 1 || got[0] != "Áo thun" {
		t.Fatalf("TenSanPham = %v", got)
	}
	if got := fields["KichThuocs"]; len(got) != 2 {
		t.Fatalf("KichThuocs = %v, want 2 values", got)
	}
	want := []part{{"front_view.png", "image/png"}, {"back", "image/webp"}}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("file[%d] = %v, want %v", i, files[i], want[i])
		}
	}
}

func TestClient_DeleteImagesBatchBody(t *testing.T) {
	var body map[string]any
	var query string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusOK)
	}), Options{})

	if err := c.DeleteProductImages(context.Background(), "7", []int64{1, 2}, true); err != nil {
		t.Fatalf("DeleteProductImages returned error: %v", err)
	}
	if query != "/api/SanPham/7/images/batch" {
		t.Fatalf("path = %q", query)
	}
	if body["hardDelete"] != true {
		t.Fatalf("hardDelete = %v, want true", body["hardDelete"])
	}
	ids, _ := body["mediaIds"].([]any)
	if len(ids) != 2 {
		t.Fatalf("mediaIds = %v, want 2 ids", body["mediaIds"])
	}
}

func TestClient_ResolveMedia(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "https://shop.example.com/api"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	cases := []struct{ in, want string }{
		{"/uploads/a.jpg", "https://shop.example.com/uploads/a.jpg"},
		{"uploads/b.jpg", "https://shop.example.com/uploads/b.jpg"},
		{`uploads\c.jpg`, "https://shop.example.com/uploads/c.jpg"},
		{"https://cdn.example.com/c.jpg", "https://cdn.example.com/c.jpg"},
		{"data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := c.ResolveMedia(tc.in); got != tc.want {
			t.Fatalf("ResolveMedia(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUserForm_OverridesMatchCaseInsensitively(t *testing.T) {
	raw := map[string]any{
		"maNguoiDung": float64(12),
		"hoTen":       "An",
		"TrangThai":   float64(1),
		"diaChi":      map[string]any{"city": "HN"},
	}
	fields := UserForm(raw, map[string]string{"trangThai": "0"}).Fields()

	if got := fields["TrangThai"]; len(got) != 1 || got[0] != "0" {
		t.Fatalf("TrangThai = %v, want [0]", got)
	}
	if _, ok := fields["trangThai"]; ok {
		t.Fatalf("override duplicated under a second spelling: %v", fields)
	}
	if got := fields["maNguoiDung"]; len(got) != 1 || got[0] != "12" {
		t.Fatalf("maNguoiDung = %v, want [12]", got)
	}
	if _, ok := fields["diaChi"]; ok {
		t.Fatalf("nested value should be skipped: %v", fields)
	}
}
