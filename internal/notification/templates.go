package notification

import (
	"html/template"
	"strings"

	"storefront-order-service/internal/model"

	"github.com/shopspring/decimal"
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "£" + d.StringFixed(2) },
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`
<h2>Hi {{.Greeting}},</h2>
<p>Your order has been placed successfully!</p>
<p>Order reference: <b>{{.Order.ID}}</b></p>

<h3>Order Summary</h3>
<table border="1" cellpadding="10" cellspacing="0" style="border-collapse: collapse;">
  <thead>
    <tr><th>Image</th><th>Product</th><th>Size</th><th>Qty</th><th>Price</th><th>Total</th></tr>
  </thead>
  <tbody>
  {{- range .Order.Items}}
    <tr>
      <td>{{if .Image}}<img src="{{.Image}}" width="50" />{{end}}</td>
      <td>{{if .Name}}{{.Name}}{{else}}Product{{end}}</td>
      <td>{{.Size}}</td>
      <td>{{.Quantity}}</td>
      <td>{{money .UnitPrice}}</td>
      <td>{{money .LineTotal}}</td>
    </tr>
  {{- end}}
  </tbody>
</table>

<p>Subtotal: {{money .Order.BaseAmount}}</p>
<p>Shipping ({{.Order.ShippingMethod}}): {{money .Order.ShippingCost}}</p>
<h3>Grand Total: {{money .Order.TotalAmount}}</h3>

<p><b>Delivery Address:</b></p>
<p>{{.AddressLine}}</p>

<p>We'll notify you once your order is shipped.</p>
<br/>
<p>Thanks for shopping with us!</p>
`))

var adminTmpl = template.Must(template.New("admin").Funcs(funcs).Parse(`
<h2>New Order Received</h2>
<p><b>User:</b> {{.User.Email}}</p>
<p><b>Payment:</b> {{.Order.PaymentMethod}}{{if .Order.Payment}} (paid){{end}}</p>
<p><b>Base Amount:</b> {{money .Order.BaseAmount}}</p>
<p><b>Shipping Cost:</b> {{money .Order.ShippingCost}}</p>
<p><b>Total:</b> {{money .Order.TotalAmount}}</p>
{{.Confirmation}}
`))

type confirmationView struct {
	Greeting    string
	Order       *model.Order
	AddressLine string
}

type adminView struct {
	User         *model.User
	Order        *model.Order
	Confirmation template.HTML
}

func addressLine(a model.Address) string {
	var parts []string
	for _, p := range []string{a.Street, a.City, a.State, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	line := strings.Join(parts, ", ")
	if a.Zipcode != "" {
		line += " - " + a.Zipcode
	}
	return line
}

func greeting(user *model.User, order *model.Order) string {
	if name := strings.TrimSpace(order.Address.FirstName); name != "" {
		return name
	}
	if user != nil && user.Name != "" {
		return user.Name
	}
	return "there"
}
