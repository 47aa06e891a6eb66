package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"storefront-order-service/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaypal struct {
	createStatus  int
	createBody    string
	captureStatus int
	captureBody   string

	lastCreate map[string]any
	lastAuth   string
}

func (f *fakePaypal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok-123","expires_in":3600}`)
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &f.lastCreate))
		w.WriteHeader(f.createStatus)
		_, _ = io.WriteString(w, f.createBody)
	})
	mux.HandleFunc("/v2/checkout/orders/PP-1/capture", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		w.WriteHeader(f.captureStatus)
		_, _ = io.WriteString(w, f.captureBody)
	})
	return mux
}

func newTestClient(t *testing.T, f *fakePaypal) PaypalClient {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	return NewPaypalClientWithHTTP(&config.Paypal{
		BaseApiURL:   srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BrandName:    "Shop",
	}, srv.Client())
}

func TestCreateOrder(t *testing.T) {
	f := &fakePaypal{
		createStatus: http.StatusCreated,
		createBody: `{"id":"PP-1","status":"CREATED","links":[
			{"rel":"self","href":"https://paypal.test/self"},
			{"rel":"approve","href":"https://paypal.test/approve"}]}`,
	}
	c := newTestClient(t, f)

	resp, err := c.CreateOrder(context.Background(), &CreateOrderRequest{
		Amount:    "59.98",
		Currency:  "GBP",
		ReturnURL: "https://shop.test/payment-success",
		CancelURL: "https://shop.test/payment-cancelled",
	})
	require.NoError(t, err)

	assert.Equal(t, "PP-1", resp.OrderID)
	assert.Equal(t, "https://paypal.test/approve", resp.ApproveURL)
	assert.Equal(t, "Bearer tok-123", f.lastAuth)
	assert.Equal(t, "CAPTURE", f.lastCreate["intent"])

	units := f.lastCreate["purchase_units"].([]any)
	amount := units[0].(map[string]any)["amount"].(map[string]any)
	assert.Equal(t, "GBP", amount["currency_code"])
	assert.Equal(t, "59.98", amount["value"])

	appCtx := f.lastCreate["application_context"].(map[string]any)
	assert.Equal(t, "https://shop.test/payment-success", appCtx["return_url"])
	assert.Equal(t, "https://shop.test/payment-cancelled", appCtx["cancel_url"])
	assert.Equal(t, "Shop", appCtx["brand_name"])
}

func TestCreateOrder_NoApproveLink(t *testing.T) {
	f := &fakePaypal{
		createStatus: http.StatusCreated,
		createBody:   `{"id":"PP-1","status":"CREATED","links":[{"rel":"self","href":"x"}]}`,
	}
	c := newTestClient(t, f)

	_, err := c.CreateOrder(context.Background(), &CreateOrderRequest{Amount: "1.00", Currency: "GBP"})
	assert.ErrorIs(t, err, ErrApproveLinkMissing)
}

func TestCreateOrder_ErrorStatus(t *testing.T) {
	f := &fakePaypal{
		createStatus: http.StatusUnprocessableEntity,
		createBody:   `{"name":"UNPROCESSABLE_ENTITY"}`,
	}
	c := newTestClient(t, f)

	_, err := c.CreateOrder(context.Background(), &CreateOrderRequest{Amount: "1.00", Currency: "GBP"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paypal error 422")
}

func TestCaptureOrder(t *testing.T) {
	f := &fakePaypal{
		captureStatus: http.StatusCreated,
		captureBody: `{"id":"PP-1","status":"COMPLETED","purchase_units":[{"payments":{"captures":[
			{"id":"CAP-1","status":"COMPLETED","amount":{"currency_code":"GBP","value":"59.98"}}]}}]}`,
	}
	c := newTestClient(t, f)

	resp, err := c.CaptureOrder(context.Background(), "PP-1")
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", resp.Status)
	assert.Equal(t, "Bearer tok-123", f.lastAuth)
	require.Len(t, resp.Order.Captures(), 1)
	assert.Equal(t, "CAP-1", resp.Order.Captures()[0].ID)
	assert.Equal(t, "59.98", resp.Order.Captures()[0].Amount.Value)
}

func TestCaptureOrder_ErrorStatus(t *testing.T) {
	f := &fakePaypal{
		captureStatus: http.StatusUnprocessableEntity,
		captureBody:   `{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`,
	}
	c := newTestClient(t, f)

	_, err := c.CaptureOrder(context.Background(), "PP-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORDER_ALREADY_CAPTURED")
}
