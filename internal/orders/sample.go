package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/shopdesk/internal/shopapi"
)

func sampleProduct(id, name string, price int64, sale int64) shopapi.Product {
	p := shopapi.Product{ID: id, Name: name, Price: decimal.NewFromInt(price)}
	if sale > 0 {
		d := decimal.NewFromInt(sale)
		p.DiscountPrice = &d
	}
	return p
}

// Sample returns the demo orders shown until the backend exposes orders.
// Timestamps are relative to now.
func Sample(now time.Time) []Order {
	tee := sampleProduct("1", "Áo thun basic", 150000, 120000)
	jeans := sampleProduct("2", "Quần jean slim", 450000, 0)
	hat := sampleProduct("3", "Mũ lưỡi trai", 90000, 0)
	dress := sampleProduct("4", "Đầm maxi", 620000, 0)

	return []Order{
		{
			ID:            "DH1001",
			UserID:        "7",
			Customer:      "Nguyễn Thị Lan",
			Items:         []CartItem{{Product: tee, Quantity: 2, Size: "M", Color: "Trắng"}},
			Status:        Pending,
			Address:       "12 Lê Lợi, Quận 1, TP.HCM",
			PaymentMethod: "COD",
			PlacedAt:      now.Add(-2 * time.Hour),
		},
		{
			ID:       "DH1002",
			UserID:   "9",
			Customer: "Trần Văn Minh",
			Items: []CartItem{
				{Product: jeans, Quantity: 1, Size: "32", Color: "Xanh"},
				{Product: hat, Quantity: 1, Color: "Đen"},
			},
			Status:        Processing,
			Address:       "45 Trần Phú, Hà Đông, Hà Nội",
			PaymentMethod: "Chuyển khoản",
			PlacedAt:      now.Add(-26 * time.Hour),
		},
		{
			ID:            "DH1003",
			UserID:        "12",
			Customer:      "Lê Hoàng Anh",
			Items:         []CartItem{{Product: dress, Quantity: 1, Size: "S", Color: "Đỏ"}},
			Status:        Shipped,
			Address:       "8 Nguyễn Văn Linh, Hải Châu, Đà Nẵng",
			PaymentMethod: "Ví điện tử",
			PlacedAt:      now.Add(-3 * 24 * time.Hour),
		},
		{
			ID:            "DH1004",
			UserID:        "7",
			Customer:      "Nguyễn Thị Lan",
			Items:         []CartItem{{Product: hat, Quantity: 3, Color: "Be"}},
			Status:        Delivered,
			Address:       "12 Lê Lợi, Quận 1, TP.HCM",
			PaymentMethod: "COD",
			PlacedAt:      now.Add(-7 * 24 * time.Hour),
		},
		{
			ID:            "DH1005",
			UserID:        "15",
			Customer:      "Phạm Quốc Bảo",
			Items:         []CartItem{{Product: tee, Quantity: 1, Size: "L", Color: "Đen"}},
			Status:        Cancelled,
			Address:       "201 Hùng Vương, Ninh Kiều, Cần Thơ",
			PaymentMethod: "COD",
			PlacedAt:      now.Add(-10 * 24 * time.Hour),
		},
	}
}
