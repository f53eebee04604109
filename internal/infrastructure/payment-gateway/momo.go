package paymentgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/schoolup-zm/payment-service/config"
	"github.com/schoolup-zm/payment-service/internal/domain"
	"github.com/schoolup-zm/payment-service/pkg/httpclient"
	"github.com/sony/gobreaker/v2"
)

// CollectionGateway is the outbound port to the mobile-money aggregator.
// RequestCollection triggers a USSD push on the payer's handset; the
// outcome arrives later on the notification webhook.
type CollectionGateway interface {
	RequestCollection(ctx context.Context, req CollectionRequest) (CollectionResponse, error)
}

type CollectionRequest struct {
	TransactionID string
	Amount        float64
	Currency      string
	PhoneNumber   string
	Network       string
	PayeeNote     string
}

type CollectionResponse struct {
	ExternalReference string
	Status            string
}

type aggregatorCollectRequest struct {
	Amount       float64       `json:"amount"`
	Currency     string        `json:"currency"`
	ExternalID   string        `json:"externalId"`
	Payer        payerIdentity `json:"payer"`
	Network      string        `json:"network"`
	MerchantCode string        `json:"merchantCode"`
	PayeeNote    string        `json:"payeeNote"`
	PayerMessage string        `json:"payerMessage"`
}

type payerIdentity struct {
	PartyID     string `json:"partyId"`
	PartyIDType string `json:"partyIdType"`
}

type aggregatorCollectResponse struct {
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
	Message           string `json:"message"`
}

type AggregatorClient struct {
	config  *config.Config
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func CreateAggregatorClient(config *config.Config, breaker *gobreaker.CircuitBreaker[[]byte]) CollectionGateway {
	return &AggregatorClient{
		config:  config,
		breaker: breaker,
	}
}

func (c *AggregatorClient) RequestCollection(ctx context.Context, req CollectionRequest) (CollectionResponse, error) {
	merchantCode := c.config.MoMoConfig.MTNMerchantCode
	if req.Network == domain.NetworkAirtel {
		merchantCode = c.config.MoMoConfig.AirtelMerchantCode
	}

	payload, err := json.Marshal(aggregatorCollectRequest{
		Amount:       req.Amount,
		Currency:     req.Currency,
		ExternalID:   req.TransactionID,
		Payer:        payerIdentity{PartyID: req.PhoneNumber, PartyIDType: "MSISDN"},
		Network:      req.Network,
		MerchantCode: merchantCode,
		PayeeNote:    req.PayeeNote,
		PayerMessage: "Authorize payment to SchoolUp",
	})
	if err != nil {
		return CollectionResponse{}, fmt.Errorf("error marshalling collect request: %v", err)
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		statusCode, body, err := httpclient.SendRequestWithContext(ctx, httpclient.HttpRequest{
			URL:    fmt.Sprintf("%s/v1/momo/collect", c.config.MoMoConfig.AggregatorHost),
			Method: "POST",
			Body:   payload,
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": fmt.Sprintf("Bearer %s", c.config.MoMoConfig.APIKey),
			},
		})
		if err != nil {
			return nil, err
		}

		if statusCode != http.StatusOK && statusCode != http.StatusAccepted {
			return nil, fmt.Errorf("aggregator returned non-2xx status: %d", statusCode)
		}

		return body, nil
	})
	if err != nil {
		log.Error().Err(err).Str("component", "RequestCollection").Msg("")
		return CollectionResponse{}, err
	}

	var collectResp aggregatorCollectResponse
	if err := json.Unmarshal(respBody, &collectResp); err != nil {
		return CollectionResponse{}, fmt.Errorf("error unmarshalling collect response: %v", err)
	}

	return CollectionResponse{
		ExternalReference: collectResp.ExternalReference,
		Status:            collectResp.Status,
	}, nil
}
