package sslcommerz_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bistro-boss-server/pkg/payment/sslcommerz"
)

func TestCreateSessionReturnsGatewayURL(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/gwprocess/v4/api.php", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"store_id":     r.PostFormValue("store_id"),
			"tran_id":      r.PostFormValue("tran_id"),
			"total_amount": r.PostFormValue("total_amount"),
			"currency":     r.PostFormValue("currency"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "SUCCESS", "sessionkey": "SK1", "GatewayPageURL": "https://gw/pay/SK1"}`))
	}))
	defer srv.Close()

	c := sslcommerz.NewWithBase(srv.URL, "teststore", "testpass")
	resp, err := c.CreateSession(context.Background(), sslcommerz.SessionRequest{
		TranID: "TX123", Amount: 42.5, Currency: "USD",
		CustomerName: "Amina", CustomerEmail: "amina@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://gw/pay/SK1", resp.GatewayPageURL)
	assert.Equal(t, "teststore", gotForm["store_id"])
	assert.Equal(t, "TX123", gotForm["tran_id"])
	assert.Equal(t, "42.50", gotForm["total_amount"])
	assert.Equal(t, "USD", gotForm["currency"])
}

func TestCreateSessionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "FAILED", "failedreason": "store credential error"}`))
	}))
	defer srv.Close()

	c := sslcommerz.NewWithBase(srv.URL, "bad", "creds")
	_, err := c.CreateSession(context.Background(), sslcommerz.SessionRequest{TranID: "TX1", Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store credential error")
}

func TestValidatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/validator/api/validationserverAPI.php", r.URL.Path)
		require.Equal(t, "VAL1", r.URL.Query().Get("val_id"))
		require.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "VALID", "tran_id": "TX123", "amount": "42.50", "currency": "USD"}`))
	}))
	defer srv.Close()

	c := sslcommerz.NewWithBase(srv.URL, "teststore", "testpass")
	v, err := c.ValidatePayment(context.Background(), "VAL1")
	require.NoError(t, err)
	assert.True(t, v.Valid())
	assert.Equal(t, "TX123", v.TranID)
}

func TestValidationStatuses(t *testing.T) {
	tests := []struct {
		status string
		valid  bool
	}{
		{"VALID", true},
		{"VALIDATED", true},
		{"valid", true},
		{"INVALID_TRANSACTION", false},
		{"FAILED", false},
		{"", false},
	}
	for _, tc := range tests {
		v := sslcommerz.ValidationResponse{Status: tc.status}
		assert.Equal(t, tc.valid, v.Valid(), "status: %q", tc.status)
	}
}
