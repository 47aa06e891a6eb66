package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-order-service/internal/client"
	"storefront-order-service/internal/config"
	"storefront-order-service/internal/model"
)

const paypalStatusCompleted = "COMPLETED"

// Checkout is what a strategy hands back to the caller after preparing an order.
type Checkout struct {
	ExternalID  string
	ApprovalURL string
}

// Confirmation is a gateway-confirmed payment.
type Confirmation struct {
	ExternalID string
	Status     string
	Captures   []*model.PaymentCapture
}

// PaymentStrategy is the part of order placement that differs per payment method.
type PaymentStrategy interface {
	Method() model.PaymentMethod
	// Prepare runs before the order is persisted and sets its status and
	// gateway reference. The caller has already stamped Method on the order.
	Prepare(ctx context.Context, order *model.Order) (*Checkout, error)
	Confirm(ctx context.Context, externalID string) (*Confirmation, error)
	// DeductsOnPlacement reports whether stock leaves the shelf at placement
	// rather than at confirmation.
	DeductsOnPlacement() bool
}

type codStrategy struct{}

func NewCODStrategy() PaymentStrategy {
	return codStrategy{}
}

func (codStrategy) Method() model.PaymentMethod { return model.PaymentMethodCOD }

func (codStrategy) Prepare(_ context.Context, order *model.Order) (*Checkout, error) {
	order.Payment = false
	order.Status = model.OrderStatusPlaced
	return &Checkout{}, nil
}

func (codStrategy) Confirm(context.Context, string) (*Confirmation, error) {
	return nil, ErrConfirmNotSupported
}

func (codStrategy) DeductsOnPlacement() bool { return true }

type paypalStrategy struct {
	paypalClient client.PaypalClient
	returnURL    string
	cancelURL    string
}

func NewPaypalStrategy(paypalClient client.PaypalClient, frontendURL string) PaymentStrategy {
	base := strings.TrimRight(frontendURL, "/")
	return &paypalStrategy{
		paypalClient: paypalClient,
		returnURL:    base + "/payment-success",
		cancelURL:    base + "/payment-cancelled",
	}
}

func (s *paypalStrategy) Method() model.PaymentMethod { return model.PaymentMethodPayPal }

func (s *paypalStrategy) Prepare(ctx context.Context, order *model.Order) (*Checkout, error) {
	resp, err := s.paypalClient.CreateOrder(ctx, &client.CreateOrderRequest{
		Amount:    order.TotalAmount.StringFixed(2),
		Currency:  config.Currency,
		ReturnURL: s.returnURL,
		CancelURL: s.cancelURL,
	})
	if errors.Is(err, client.ErrApproveLinkMissing) {
		return nil, fmt.Errorf("%w: %v", ErrGatewayResponseMalformed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	externalID := resp.OrderID
	order.Payment = false
	order.Status = model.OrderStatusPending
	order.ExternalPaymentID = &externalID

	return &Checkout{
		ExternalID:  resp.OrderID,
		ApprovalURL: resp.ApproveURL,
	}, nil
}

// Confirm captures the approved order. Anything short of COMPLETED is
// ErrPaymentNotCompleted.
func (s *paypalStrategy) Confirm(ctx context.Context, externalID string) (*Confirmation, error) {
	resp, err := s.paypalClient.CaptureOrder(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp == nil || resp.Order == nil {
		return nil, ErrGatewayResponseMalformed
	}
	if resp.Status != paypalStatusCompleted {
		return nil, fmt.Errorf("%w: paypal status %q", ErrPaymentNotCompleted, resp.Status)
	}

	var captures []*model.PaymentCapture
	for _, c := range resp.Order.Captures() {
		if c.ID == "" {
			continue
		}
		captures = append(captures, &model.PaymentCapture{
			CaptureID:       c.ID,
			ExternalOrderID: externalID,
			Status:          c.Status,
			Amount:          c.Amount.Value,
			Currency:        c.Amount.Currency,
		})
	}

	return &Confirmation{
		ExternalID: externalID,
		Status:     resp.Status,
		Captures:   captures,
	}, nil
}

func (s *paypalStrategy) DeductsOnPlacement() bool { return false }
