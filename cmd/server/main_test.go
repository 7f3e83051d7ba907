package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-router/internal/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := newServer(config.Default())
	require.NoError(t, err)
	return setupRouter(srv)
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestProcessPayout_FullFlow(t *testing.T) {
	router := newTestRouter(t)

	w := postJSON(t, router, "/payouts", map[string]interface{}{
		"payoutId":            "po_server_1",
		"amount":              100000,
		"sourceCurrency":      "GBP",
		"destinationCurrency": "GBP",
		"payoutType":          "bank",
		"customerName":        "John Doe",
		"country":             "GB",
		"city":                "London",
		"line1":               "4 Baker Street",
		"sortCode":            "231470",
		"accountNumber":       "28821822",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp payoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "po_server_1", resp.PayoutID)
	assert.Equal(t, "fulfilled", resp.FlowState)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "q-7df0", resp.QuoteID)
	assert.Equal(t, "5523", resp.TransferID)
}

func TestProcessPayout_Validation(t *testing.T) {
	router := newTestRouter(t)

	t.Run("MissingPayoutID", func(t *testing.T) {
		w := postJSON(t, router, "/payouts", map[string]interface{}{"amount": 100})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "payoutId is required")
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		w := postJSON(t, router, "/payouts", map[string]interface{}{"payoutId": "po_zero", "amount": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "amount must be positive")
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, "/payouts", bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CardPayoutUnsupported", func(t *testing.T) {
		w := postJSON(t, router, "/payouts", map[string]interface{}{
			"payoutId":   "po_card",
			"amount":     100,
			"payoutType": "card",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "not supported")
	})

	t.Run("MissingCustomerName", func(t *testing.T) {
		w := postJSON(t, router, "/payouts", map[string]interface{}{
			"payoutId":      "po_noname",
			"amount":        100,
			"sortCode":      "231470",
			"accountNumber": "28821822",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "customer_details.name")
	})
}

func TestAuthorizePayment(t *testing.T) {
	router := newTestRouter(t)

	t.Run("Authorized", func(t *testing.T) {
		w := postJSON(t, router, "/payments/authorize", map[string]interface{}{
			"paymentId":   "pay_1",
			"amount":      10990,
			"currency":    "USD",
			"cardNumber":  "4111111111111111",
			"expiryMonth": "09",
			"expiryYear":  "2027",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "authorized", resp["status"])
		assert.Equal(t, "5O190127TN364715T", resp["connectorTransactionId"])
	})

	t.Run("MissingCurrency", func(t *testing.T) {
		w := postJSON(t, router, "/payments/authorize", map[string]interface{}{
			"paymentId": "pay_2",
			"amount":    10990,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	w = httptest.NewRecorder()
	req, err = http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
