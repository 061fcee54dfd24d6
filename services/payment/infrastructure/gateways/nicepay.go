package gateways

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/spicyjump/storefront/services/payment/domain/ports"
)

const (
	providerNicePay = "nicepay"
	niceResultOK    = "0000"
)

// NicePay is the NicePay client. Requests are signed with a SHA-256 of the
// transaction fields and the secret key.
type NicePay struct {
	baseURL   string
	secretKey string
	auth      string
	client    *http.Client
	now       func() time.Time
}

func NewNicePay(baseURL, clientID, secretKey string) *NicePay {
	return &NicePay{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		auth:      basicAuth(clientID, secretKey),
		client:    newHTTPClient(),
		now:       time.Now,
	}
}

var _ ports.NicePay = (*NicePay)(nil)

// Approve completes the transaction tid for amount.
func (n *NicePay) Approve(ctx context.Context, tid string, amount decimal.Decimal) (*ports.Result, error) {
	amt := amount.String()
	body := map[string]string{
		"amount":   amt,
		"ediDate":  n.ediDate(),
		"signData": sha256Hex(tid, amt, n.secretKey),
	}
	return n.post(ctx, "/v1/payments/"+url.PathEscape(tid), tid, body)
}

func (n *NicePay) Cancel(ctx context.Context, tid, orderID, reason string) (*ports.Result, error) {
	edi := n.ediDate()
	body := map[string]string{
		"reason":   reason,
		"orderId":  orderID,
		"ediDate":  edi,
		"signData": sha256Hex(tid, edi, n.secretKey),
	}
	return n.post(ctx, "/v1/payments/"+url.PathEscape(tid)+"/cancel", tid, body)
}

func (n *NicePay) ediDate() string {
	return n.now().Format(time.RFC3339)
}

// post treats any resultCode other than 0000 as a rejection, whatever the
// HTTP status.
func (n *NicePay) post(ctx context.Context, path, tid string, body any) (*ports.Result, error) {
	status, raw, err := postJSON(ctx, n.client, providerNicePay, n.baseURL+path, n.auth, body)
	if err != nil {
		return nil, err
	}
	code := gjson.GetBytes(raw, "resultCode").String()
	if code != niceResultOK {
		return nil, &Error{
			Provider:   providerNicePay,
			HTTPStatus: status,
			Code:       code,
			Message:    gjson.GetBytes(raw, "resultMsg").String(),
		}
	}
	txID := gjson.GetBytes(raw, "tid").String()
	if txID == "" {
		txID = tid
	}
	return &ports.Result{
		TransactionID: txID,
		Status:        gjson.GetBytes(raw, "status").String(),
		Raw:           raw,
	}, nil
}
