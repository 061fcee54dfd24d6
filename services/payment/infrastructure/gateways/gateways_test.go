package gateways

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestToss_Confirm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/confirm", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "test_sk", user)
		assert.Empty(t, pass)

		body := decodeBody(t, r)
		assert.Equal(t, "pk_1", body["paymentKey"])
		assert.Equal(t, "order-1", body["orderId"])
		assert.Equal(t, float64(15000), body["amount"])

		_, _ = w.Write([]byte(`{"paymentKey":"pk_1","status":"DONE","totalAmount":15000}`))
	}))
	defer srv.Close()

	res, err := NewToss(srv.URL+"/", "test_sk").Confirm(context.Background(), "pk_1", "order-1", decimal.NewFromInt(15000))
	require.NoError(t, err)
	assert.Equal(t, "pk_1", res.TransactionID)
	assert.Equal(t, "DONE", res.Status)
	assert.Contains(t, string(res.Raw), "totalAmount")
}

func TestToss_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"REJECT_CARD_COMPANY","message":"카드사 거절"}`))
	}))
	defer srv.Close()

	_, err := NewToss(srv.URL, "test_sk").Confirm(context.Background(), "pk_1", "order-1", decimal.NewFromInt(100))
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusBadRequest, gerr.HTTPStatus)
	assert.Equal(t, "REJECT_CARD_COMPANY", gerr.Code)
	assert.Equal(t, "카드사 거절", gerr.Message)
}

func TestToss_Cancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/pk_1/cancel", r.URL.Path)
		assert.Equal(t, "damaged", decodeBody(t, r)["cancelReason"])
		_, _ = w.Write([]byte(`{"paymentKey":"pk_1","status":"CANCELED"}`))
	}))
	defer srv.Close()

	res, err := NewToss(srv.URL, "test_sk").Cancel(context.Background(), "pk_1", "damaged")
	require.NoError(t, err)
	assert.Equal(t, "CANCELED", res.Status)
}

func TestNicePay_Approve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/tid_1", r.URL.Path)
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)

		body := decodeBody(t, r)
		assert.Equal(t, "31.5", body["amount"])
		assert.Equal(t, "2025-06-01T09:00:00Z", body["ediDate"])
		assert.Equal(t, sha256Hex("tid_1", "31.5", "secret"), body["signData"])

		_, _ = w.Write([]byte(`{"resultCode":"0000","resultMsg":"정상 처리","tid":"tid_1","status":"paid"}`))
	}))
	defer srv.Close()

	n := NewNicePay(srv.URL, "client", "secret")
	n.now = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	res, err := n.Approve(context.Background(), "tid_1", decimal.RequireFromString("31.50"))
	require.NoError(t, err)
	assert.Equal(t, "tid_1", res.TransactionID)
	assert.Equal(t, "paid", res.Status)
}

func TestNicePay_ResultCodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCode":"3011","resultMsg":"카드번호 오류"}`))
	}))
	defer srv.Close()

	_, err := NewNicePay(srv.URL, "client", "secret").Approve(context.Background(), "tid_1", decimal.NewFromInt(10))
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "3011", gerr.Code)
	assert.Equal(t, http.StatusOK, gerr.HTTPStatus)
}

func TestNicePay_CancelSignature(t *testing.T) {
	edi := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/tid_9/cancel", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "order-9", body["orderId"])
		assert.Equal(t, "no longer needed", body["reason"])
		assert.Equal(t, sha256Hex("tid_9", edi.Format(time.RFC3339), "secret"), body["signData"])
		_, _ = w.Write([]byte(`{"resultCode":"0000","status":"cancelled"}`))
	}))
	defer srv.Close()

	n := NewNicePay(srv.URL, "client", "secret")
	n.now = func() time.Time { return edi }
	res, err := n.Cancel(context.Background(), "tid_9", "order-9", "no longer needed")
	require.NoError(t, err)
	assert.Equal(t, "tid_9", res.TransactionID)
}

func TestNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewToss(srv.URL, "k").Confirm(context.Background(), "pk", "o", decimal.NewFromInt(1))
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusBadGateway, gerr.HTTPStatus)
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"12.50", "USD", 1250},
		{"0.99", "eur", 99},
		{"15000", "KRW", 15000},
		{"1200", "jpy", 1200},
		{"10.005", "USD", 1001},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MinorUnits(decimal.RequireFromString(tt.amount), tt.currency), tt.amount+" "+tt.currency)
	}
}

func newStripeWithURL(url string) *Stripe {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(url),
		MaxNetworkRetries: stripe.Int64(0),
	})
	backends := &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	return &Stripe{api: client.New("sk_test_123", backends), webhookSecret: "whsec_test"}
}

func TestStripe_CreateIntent(t *testing.T) {
	orderID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "1250", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, orderID.String(), r.PostForm.Get("metadata[order_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","status":"requires_payment_method","amount":1250,"currency":"usd"}`))
	}))
	defer srv.Close()

	in, err := newStripeWithURL(srv.URL).CreateIntent(context.Background(), decimal.RequireFromString("12.50"), "USD", orderID)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", in.ID)
	assert.Equal(t, "pi_123_secret_abc", in.ClientSecret)
	assert.Equal(t, "requires_payment_method", in.Status)
}

func signStripe(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripe_ParseWebhook(t *testing.T) {
	s := newStripeWithURL("http://127.0.0.1:0")
	tests := []struct {
		name       string
		payload    string
		wantType   string
		wantTxID   string
		wantStatus string
	}{
		{
			"intent succeeded",
			`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","status":"succeeded"}}}`,
			"payment_intent.succeeded", "pi_1", "succeeded",
		},
		{
			"intent failed",
			`{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2","object":"payment_intent"}}}`,
			"payment_intent.payment_failed", "pi_2", "failed",
		},
		{
			"charge refunded",
			`{"id":"evt_3","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_3","object":"charge","payment_intent":"pi_3"}}}`,
			"charge.refunded", "pi_3", "refunded",
		},
		{
			"unrelated event",
			`{"id":"evt_4","object":"event","type":"customer.created","data":{"object":{"id":"cus_4","object":"customer"}}}`,
			"customer.created", "cus_4", "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(tt.payload)
			ev, err := s.ParseWebhook(payload, signStripe(payload, "whsec_test", time.Now()))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ev.Type)
			assert.Equal(t, tt.wantTxID, ev.TransactionID)
			assert.Equal(t, tt.wantStatus, ev.Status)
		})
	}
}

func TestStripe_ParseWebhook_BadSignature(t *testing.T) {
	s := newStripeWithURL("http://127.0.0.1:0")
	payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

	_, err := s.ParseWebhook(payload, signStripe(payload, "whsec_other", time.Now()))
	assert.Error(t, err)

	_, err = s.ParseWebhook(payload, signStripe(payload, "whsec_test", time.Now().Add(-time.Hour)))
	assert.Error(t, err, "stale timestamps are rejected")
}
