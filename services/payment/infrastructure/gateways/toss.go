package gateways

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/spicyjump/storefront/services/payment/domain/ports"
)

const providerToss = "toss"

// Toss is the Toss Payments client. Requests authenticate with Basic auth of
// the secret key and an empty password.
type Toss struct {
	baseURL string
	auth    string
	client  *http.Client
}

func NewToss(baseURL, secretKey string) *Toss {
	return &Toss{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    basicAuth(secretKey, ""),
		client:  newHTTPClient(),
	}
}

var _ ports.Toss = (*Toss)(nil)

// Confirm approves a payment the buyer authorised in the Toss widget.
func (t *Toss) Confirm(ctx context.Context, paymentKey, orderID string, amount decimal.Decimal) (*ports.Result, error) {
	body := map[string]any{
		"paymentKey": paymentKey,
		"orderId":    orderID,
		"amount":     json.Number(amount.String()),
	}
	return t.post(ctx, "/v1/payments/confirm", body)
}

func (t *Toss) Cancel(ctx context.Context, paymentKey, reason string) (*ports.Result, error) {
	return t.post(ctx, "/v1/payments/"+url.PathEscape(paymentKey)+"/cancel", map[string]any{"cancelReason": reason})
}

func (t *Toss) post(ctx context.Context, path string, body any) (*ports.Result, error) {
	status, raw, err := postJSON(ctx, t.client, providerToss, t.baseURL+path, t.auth, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &Error{
			Provider:   providerToss,
			HTTPStatus: status,
			Code:       gjson.GetBytes(raw, "code").String(),
			Message:    gjson.GetBytes(raw, "message").String(),
		}
	}
	return &ports.Result{
		TransactionID: gjson.GetBytes(raw, "paymentKey").String(),
		Status:        gjson.GetBytes(raw, "status").String(),
		Raw:           raw,
	}, nil
}
