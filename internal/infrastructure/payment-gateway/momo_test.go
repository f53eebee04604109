package paymentgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolup-zm/payment-service/config"
	circuitbreaker "github.com/schoolup-zm/payment-service/internal/infrastructure/circuit-breaker"
)

func createTestClient(aggregatorURL string) CollectionGateway {
	cfg := &config.Config{
		MoMoConfig: config.MoMoConfig{
			AggregatorHost:     aggregatorURL,
			APIKey:             "test-key",
			MTNMerchantCode:    "556677",
			AirtelMerchantCode: "112233",
		},
	}
	return CreateAggregatorClient(cfg, circuitbreaker.CreateCircuitBreaker("aggregator-test"))
}

func TestRequestCollection(t *testing.T) {
	var received aggregatorCollectRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(aggregatorCollectResponse{
			ExternalReference: "8F3K2A",
			Status:            "PENDING_USER_INPUT",
		})
	}))
	defer server.Close()

	client := createTestClient(server.URL)

	resp, err := client.RequestCollection(context.Background(), CollectionRequest{
		TransactionID: "txn-1",
		Amount:        1000,
		Currency:      "ZMW",
		PhoneNumber:   "0971234567",
		Network:       "MTN",
		PayeeNote:     "School Fees - Student std-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "8F3K2A", resp.ExternalReference)
	assert.Equal(t, "PENDING_USER_INPUT", resp.Status)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "txn-1", received.ExternalID)
	assert.Equal(t, float64(1000), received.Amount)
	assert.Equal(t, "0971234567", received.Payer.PartyID)
	assert.Equal(t, "MSISDN", received.Payer.PartyIDType)
	assert.Equal(t, "556677", received.MerchantCode)
}

func TestRequestCollection_AirtelMerchantCode(t *testing.T) {
	var received aggregatorCollectRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(aggregatorCollectResponse{Status: "PENDING_USER_INPUT"})
	}))
	defer server.Close()

	client := createTestClient(server.URL)

	_, err := client.RequestCollection(context.Background(), CollectionRequest{
		TransactionID: "txn-2",
		Amount:        500,
		Currency:      "ZMW",
		PhoneNumber:   "0771234567",
		Network:       "AIRTEL",
	})
	require.NoError(t, err)
	assert.Equal(t, "112233", received.MerchantCode)
}

func TestRequestCollection_AggregatorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := createTestClient(server.URL)

	_, err := client.RequestCollection(context.Background(), CollectionRequest{
		TransactionID: "txn-3",
		Amount:        100,
		Currency:      "ZMW",
		PhoneNumber:   "0971234567",
		Network:       "MTN",
	})
	assert.ErrorContains(t, err, "non-2xx")
}
