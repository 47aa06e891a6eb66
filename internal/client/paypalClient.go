package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"storefront-order-service/internal/config"
	"storefront-order-service/internal/model"
	"time"
)

var ErrApproveLinkMissing = errors.New("paypal response has no approve link")

type PaypalClient interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	CaptureOrder(ctx context.Context, orderID string) (*CaptureOrderResponse, error)
}

type CreateOrderRequest struct {
	Amount    string // two decimal places
	Currency  string
	ReturnURL string
	CancelURL string
}

type CreateOrderResponse struct {
	OrderID    string
	ApproveURL string
}

type CaptureOrderResponse struct {
	Status string
	Order  *model.PaypalOrder
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	brandName          string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return NewPaypalClientWithHTTP(paypalCfg, &http.Client{
		Timeout: 30 * time.Second,
	})
}

func NewPaypalClientWithHTTP(paypalCfg *config.Paypal, httpClient *http.Client) PaypalClient {
	return &paypalClientImpl{
		httpClient:         httpClient,
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		brandName:          paypalCfg.BrandName,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal oauth error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", errors.New("paypal returned an empty access token")
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, in *CreateOrderRequest) (*CreateOrderResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": in.Currency,
					"value":         in.Amount,
				},
			},
		},
		"application_context": map[string]string{
			"return_url":   in.ReturnURL,
			"cancel_url":   in.CancelURL,
			"brand_name":   c.brandName,
			"landing_page": "LOGIN",
			"user_action":  "PAY_NOW",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	var result model.PaypalOrder
	if err := c.do(ctx, accessToken, c.baseApiURL+"/v2/checkout/orders", body, &result); err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	if result.ID == "" {
		return nil, errors.New("paypal create order: response has no order id")
	}

	approveURL := result.ApproveURL()
	if approveURL == "" {
		return nil, ErrApproveLinkMissing
	}

	return &CreateOrderResponse{
		OrderID:    result.ID,
		ApproveURL: approveURL,
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, orderID string) (*CaptureOrderResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	url := fmt.Sprintf(
		"%s/v2/checkout/orders/%s/capture",
		c.baseApiURL,
		orderID,
	)

	var result model.PaypalOrder
	if err := c.do(ctx, accessToken, url, []byte("{}"), &result); err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}

	return &CaptureOrderResponse{
		Status: result.Status,
		Order:  &result,
	}, nil
}

// do posts a JSON body and decodes a 2xx response into out.
func (c *paypalClientImpl) do(ctx context.Context, accessToken, url string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}

	return nil
}
