package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront-order-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*Message
	fail map[string]error
}

func (s *recordingSender) Send(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail[msg.To]; err != nil {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testOrder(method model.PaymentMethod) *model.Order {
	return &model.Order{
		ID: "ord-9",
		Items: []model.OrderItem{
			{ProductID: "p1", Name: "Scarf <b>", Size: "L", Quantity: 2, UnitPrice: decimal.RequireFromString("12.50"), Image: "https://cdn.test/p1.jpg"},
		},
		BaseAmount:     decimal.RequireFromString("25"),
		ShippingCost:   decimal.RequireFromString("4.99"),
		TotalAmount:    decimal.RequireFromString("29.99"),
		ShippingMethod: model.ShippingStandard,
		PaymentMethod:  method,
		Address: model.Address{
			FirstName: "Grace",
			Street:    "12 Harbour St",
			City:      "Bristol",
			Country:   "UK",
			Zipcode:   "BS1",
		},
	}
}

func TestRender(t *testing.T) {
	m := NewMailer(&recordingSender{}, "admin@example.com")

	html, err := m.Render(&model.User{Name: "G"}, testOrder(model.PaymentMethodCOD))
	require.NoError(t, err)

	assert.Contains(t, html, "Hi Grace,")
	assert.Contains(t, html, "Scarf &lt;b&gt;")
	assert.Contains(t, html, "£12.50")
	assert.Contains(t, html, "£25.00")
	assert.Contains(t, html, "Grand Total: £29.99")
	assert.Contains(t, html, "12 Harbour St, Bristol, UK - BS1")
}

func TestSend_COD(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender, "admin@example.com")
	user := &model.User{Email: "grace@example.com"}

	err := m.Send(context.Background(), &Confirmation{User: user, Order: testOrder(model.PaymentMethodCOD), HTML: "<p>hi</p>"})
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "grace@example.com", sender.sent[0].To)
	assert.Equal(t, "Order Confirmation", sender.sent[0].Subject)
	assert.Empty(t, sender.sent[0].Attachments)

	assert.Equal(t, "admin@example.com", sender.sent[1].To)
	assert.Equal(t, "New Order from grace@example.com", sender.sent[1].Subject)
	assert.Contains(t, sender.sent[1].HTML, "<p>hi</p>")
	assert.Contains(t, sender.sent[1].HTML, "£29.99")
}

func TestSend_PaypalWithInvoice(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender, "admin@example.com")

	err := m.Send(context.Background(), &Confirmation{
		User:        &model.User{Email: "grace@example.com"},
		Order:       testOrder(model.PaymentMethodPayPal),
		HTML:        "<p>hi</p>",
		InvoicePath: "/tmp/invoices/Invoice-ord-9.pdf",
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "PayPal Order Confirmed", sender.sent[0].Subject)
	assert.Equal(t, "New PayPal Order from grace@example.com", sender.sent[1].Subject)
	for _, msg := range sender.sent {
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "Invoice-ord-9.pdf", msg.Attachments[0].Name)
	}
}

func TestSend_CustomerFailureStillNotifiesAdmin(t *testing.T) {
	boom := errors.New("mailbox full")
	sender := &recordingSender{fail: map[string]error{"grace@example.com": boom}}
	m := NewMailer(sender, "admin@example.com")

	err := m.Send(context.Background(), &Confirmation{
		User:  &model.User{Email: "grace@example.com"},
		Order: testOrder(model.PaymentMethodCOD),
	})
	assert.ErrorIs(t, err, boom)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "admin@example.com", sender.sent[0].To)
}

func TestSend_NoEmail(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer(sender, "")

	err := m.Send(context.Background(), &Confirmation{User: &model.User{}, Order: testOrder(model.PaymentMethodCOD)})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}
