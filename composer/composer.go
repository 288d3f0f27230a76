// Package composer builds the deep link that hands a payment off to an
// external UPI app. It submits nothing itself; the link is a pure function
// of receiver, amount and note.
package composer

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vijay-talsangi/tourist-app/types"
)

const (
	// Scheme of the UPI deep-link protocol.
	Scheme = "upi"

	// DefaultCurrency is the ISO code UPI apps settle in.
	DefaultCurrency = "INR"
)

var validate = validator.New()

// request carries the link components through struct validation.
type request struct {
	PayeeAddress string `validate:"required"`
	PayeeName    string `validate:"required"`
	Amount       string `validate:"required"`
	Note         string
}

// Composer renders upi://pay links with a fixed currency code.
type Composer struct {
	currency string
}

// New builds a Composer. An empty currency falls back to INR.
func New(currency string) *Composer {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Composer{currency: currency}
}

// BuildUPILink composes the external payment-app invocation for a resolved
// receiver. The amount travels as a decimal string, the way the UPI
// protocol expects, never in minor units. Whether a handler for the scheme
// exists is the caller's concern; NO_PAYMENT_HANDLER belongs to that layer.
func (c *Composer) BuildUPILink(rcv types.Receiver, amount, note string) (string, error) {
	if !rcv.Exists {
		return "", &types.Error{
			Code:    types.ErrReceiverNotFound,
			Message: "cannot compose a payment link for an unknown receiver",
		}
	}

	d, err := decimal.NewFromString(amount)
	if err != nil || !d.IsPositive() {
		return "", &types.Error{
			Code:    types.ErrInvalidAmount,
			Message: "amount must be a positive decimal number",
		}
	}

	req := request{
		PayeeAddress: rcv.UPIID,
		PayeeName:    rcv.Name,
		Amount:       d.String(),
		Note:         note,
	}
	if err := validate.Struct(&req); err != nil {
		return "", &types.Error{
			Code:    types.ErrReceiverNotFound,
			Message: "receiver record is missing its UPI id or name",
		}
	}

	v := url.Values{}
	v.Set("pa", req.PayeeAddress)
	v.Set("pn", req.PayeeName)
	v.Set("am", req.Amount)
	v.Set("cu", c.currency)
	if req.Note != "" {
		v.Set("tn", req.Note)
	}

	return Scheme + "://pay?" + v.Encode(), nil
}
