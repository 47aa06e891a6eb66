package model

type PaypalLink struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

type Amount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type Capture struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CreateTime string `json:"create_time"`
	Final      bool   `json:"final_capture"`
	Amount     Amount `json:"amount"`
}

type Payments struct {
	Captures []Capture `json:"captures"`
}

type PurchaseUnit struct {
	ReferenceID string   `json:"reference_id,omitempty"`
	Amount      *Amount  `json:"amount,omitempty"`
	Payments    Payments `json:"payments"`
}

type Payer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address"`
}

// PaypalOrder is the /v2/checkout/orders representation returned by create and capture.
type PaypalOrder struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Intent        string         `json:"intent,omitempty"`
	Payer         Payer          `json:"payer"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
	Links         []PaypalLink   `json:"links"`
}

func (o *PaypalOrder) ApproveURL() string {
	for _, link := range o.Links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}

func (o *PaypalOrder) Captures() []Capture {
	var captures []Capture
	for _, unit := range o.PurchaseUnits {
		captures = append(captures, unit.Payments.Captures...)
	}
	return captures
}
