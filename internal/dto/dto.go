package dto

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"storefront-order-service/internal/model"

	"github.com/shopspring/decimal"
)

var ErrInvalidItem = errors.New("invalid line item")

// MaxLineQuantity bounds a single line and the per-product total of an order.
const MaxLineQuantity = 1000

// Item is a line item as sent by the storefront. The product reference may
// arrive as productId, id or _id, and sized products may carry a sizes map
// of label to quantity instead of a single quantity.
type Item struct {
	ProductID string         `json:"productId"`
	ID        string         `json:"id"`
	LegacyID  string         `json:"_id"`
	Quantity  *int           `json:"quantity"`
	Size      string         `json:"size"`
	Sizes     map[string]int `json:"sizes"`
}

// LineItem is the validated form every downstream component works with.
type LineItem struct {
	ProductID string
	Quantity  int
	Size      string
}

type PlaceOrderRequest struct {
	UserID         string          `json:"userId"`
	Items          []*Item         `json:"items"`
	Amount         decimal.Decimal `json:"amount"`
	Address        model.Address   `json:"address"`
	ShippingMethod string          `json:"shippingMethod"`
	Country        string          `json:"country"`
}

type PlaceOrderResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Order   *model.Order `json:"order"`
}

type PaypalOrderResponse struct {
	Success     bool   `json:"success"`
	ID          string `json:"id"`
	ApprovalURL string `json:"approvalUrl"`
}

type VerifyPaypalRequest struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

type VerifyPaypalResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

type UserOrdersRequest struct {
	UserID string `json:"userId"`
}

type SingleOrderRequest struct {
	OrderID string `json:"orderId"`
}

type OrdersResponse struct {
	Success bool           `json:"success"`
	Orders  []*model.Order `json:"orders"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type FailuresResponse struct {
	Success  bool                      `json:"success"`
	Failures []*model.AncillaryFailure `json:"failures"`
}

// SingleOrderResponse carries the order plus any gateway captures recorded
// against it.
type SingleOrderResponse struct {
	Success  bool                    `json:"success"`
	Order    *model.Order            `json:"order"`
	Captures []*model.PaymentCapture `json:"captures"`
}

// AddProductRequest takes image URLs that are already hosted.
type AddProductRequest struct {
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Weight decimal.Decimal `json:"weight"`
	Stock  int             `json:"stock"`
	Images []string        `json:"image"`
}

type SingleProductRequest struct {
	ProductID string `json:"productId"`
}

type ProductResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Product *model.Product `json:"product"`
}

type ProductsResponse struct {
	Success  bool             `json:"success"`
	Products []*model.Product `json:"products"`
}

type MonthlySales struct {
	Month string          `json:"month"`
	Sales decimal.Decimal `json:"sales"`
}

type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Sales     int    `json:"sales"`
}

type AnalysisResponse struct {
	Success       bool            `json:"success"`
	TotalOrders   int             `json:"totalOrders"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	SalesOverTime []MonthlySales  `json:"salesOverTime"`
	TopProducts   []TopProduct    `json:"topProducts"`
}

func (i *Item) productRef() string {
	for _, ref := range []string{i.ProductID, i.ID, i.LegacyID} {
		if ref = strings.TrimSpace(ref); ref != "" {
			return ref
		}
	}
	return ""
}

// NormalizeItems validates raw items and expands per-size quantity maps.
// A missing quantity counts as 1.
func NormalizeItems(items []*Item) ([]LineItem, error) {
	lines := make([]LineItem, 0, len(items))

	for idx, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: item %d is empty", ErrInvalidItem, idx)
		}

		ref := item.productRef()
		if ref == "" {
			return nil, fmt.Errorf("%w: item %d has no product reference", ErrInvalidItem, idx)
		}

		if len(item.Sizes) > 0 {
			labels := make([]string, 0, len(item.Sizes))
			for label := range item.Sizes {
				labels = append(labels, label)
			}
			sort.Strings(labels)

			for _, label := range labels {
				qty := item.Sizes[label]
				if qty < 0 {
					return nil, fmt.Errorf("%w: negative quantity for %s size %s", ErrInvalidItem, ref, label)
				}
				if qty == 0 {
					continue
				}
				if qty > MaxLineQuantity {
					return nil, fmt.Errorf("%w: quantity for %s size %s exceeds %d", ErrInvalidItem, ref, label, MaxLineQuantity)
				}
				lines = append(lines, LineItem{ProductID: ref, Quantity: qty, Size: label})
			}
			continue
		}

		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		if qty <= 0 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", ErrInvalidItem, ref)
		}
		if qty > MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity for %s exceeds %d", ErrInvalidItem, ref, MaxLineQuantity)
		}

		lines = append(lines, LineItem{ProductID: ref, Quantity: qty, Size: strings.TrimSpace(item.Size)})
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no items with a positive quantity", ErrInvalidItem)
	}

	return lines, nil
}

// QuantitiesByProduct sums quantities across sizes of the same product. The
// total per product may not exceed MaxLineQuantity.
func QuantitiesByProduct(lines []LineItem) (map[string]int, error) {
	totals := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 || line.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity %d for %s out of range", ErrInvalidItem, line.Quantity, line.ProductID)
		}
		if totals[line.ProductID] > MaxLineQuantity-line.Quantity {
			return nil, fmt.Errorf("%w: total quantity for %s exceeds %d", ErrInvalidItem, line.ProductID, MaxLineQuantity)
		}
		totals[line.ProductID] += line.Quantity
	}
	return totals, nil
}
