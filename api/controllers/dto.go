package controllers

import (
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/checkout"
	"github.com/angelmondragon/ecofinds-backend/internal/coupons"
	"github.com/angelmondragon/ecofinds-backend/internal/orders"
	"github.com/angelmondragon/ecofinds-backend/internal/products"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type productResponse struct {
	ID          products.ID `json:"id"`
	Title       string      `json:"title"`
	Price       string      `json:"price"`
	Image       string      `json:"image,omitempty"`
	CO2Saved    string      `json:"co2Saved"`
	Seller      string      `json:"seller,omitempty"`
	Category    string      `json:"category,omitempty"`
	Condition   string      `json:"condition,omitempty"`
	Description string      `json:"description,omitempty"`
}

func newProductResponse(p products.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       money(p.Price),
		Image:       p.Image,
		CO2Saved:    money(p.CO2Saved),
		Seller:      p.Seller,
		Category:    p.Category,
		Condition:   p.Condition,
		Description: p.Description,
	}
}

func newProductResponses(items []products.Product) []productResponse {
	out := make([]productResponse, 0, len(items))
	for _, p := range items {
		out = append(out, newProductResponse(p))
	}
	return out
}

type entryResponse struct {
	productResponse
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

func newEntryResponses(entries []cart.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			productResponse: newProductResponse(e.Product),
			Quantity:        e.Quantity,
			LineTotal:       money(e.LineTotal()),
		})
	}
	return out
}

type cartResponse struct {
	Entries       []entryResponse `json:"entries"`
	Count         int             `json:"count"`
	Subtotal      string          `json:"subtotal"`
	TotalCO2Saved string          `json:"totalCo2Saved"`
}

func newCartResponse(store *cart.Store) cartResponse {
	view := store.View()
	return cartResponse{
		Entries:       newEntryResponses(view.Entries),
		Count:         view.Totals.Count,
		Subtotal:      money(view.Totals.Subtotal),
		TotalCO2Saved: money(view.Totals.CO2Saved),
	}
}

type miniCartResponse struct {
	Entries  []entryResponse `json:"entries"`
	Overflow int             `json:"overflow"`
	Count    int             `json:"count"`
	Subtotal string          `json:"subtotal"`
}

type summaryResponse struct {
	Subtotal    string `json:"subtotal"`
	ShippingFee string `json:"shippingFee"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
	CouponCode  string `json:"couponCode,omitempty"`
}

func newSummaryResponse(s checkout.Summary) summaryResponse {
	return summaryResponse{
		Subtotal:    money(s.Subtotal),
		ShippingFee: money(s.ShippingFee),
		Discount:    money(s.Discount),
		Total:       money(s.Total),
		CouponCode:  s.CouponCode,
	}
}

type orderResponse struct {
	ID            string          `json:"id"`
	PlacedAt      time.Time       `json:"placedAt"`
	Lines         []entryResponse `json:"lines"`
	Summary       summaryResponse `json:"summary"`
	TotalCO2Saved string          `json:"totalCo2Saved"`
}

func newOrderResponse(o orders.Order) orderResponse {
	return orderResponse{
		ID:            o.ID.String(),
		PlacedAt:      o.PlacedAt,
		Lines:         newEntryResponses(o.Lines),
		Summary:       newSummaryResponse(o.Summary),
		TotalCO2Saved: money(o.TotalCO2Saved),
	}
}

type couponResponse struct {
	Code      string     `json:"code"`
	Type      string     `json:"type"`
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

func newCouponResponse(c coupons.Coupon, now time.Time) couponResponse {
	return couponResponse{
		Code:      c.Code,
		Type:      c.Type.String(),
		Value:     money(c.Value),
		ExpiresAt: c.ExpiresAt,
		Expired:   c.Expired(now),
	}
}
