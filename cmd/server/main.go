package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/yourorg/payment-router/internal/config"
	"github.com/yourorg/payment-router/internal/connector"
	"github.com/yourorg/payment-router/internal/connector/mock"
	"github.com/yourorg/payment-router/internal/connector/paypal"
	"github.com/yourorg/payment-router/internal/connector/wise"
	"github.com/yourorg/payment-router/internal/domain"
	"github.com/yourorg/payment-router/internal/payout"
	"github.com/yourorg/payment-router/internal/policy"
	"github.com/yourorg/payment-router/internal/reconcile"
)

type payoutRequest struct {
	PayoutID            string `json:"payoutId"`
	Amount              int64  `json:"amount"`
	SourceCurrency      string `json:"sourceCurrency"`
	DestinationCurrency string `json:"destinationCurrency"`
	PayoutType          string `json:"payoutType"` // "bank" or "card"
	CustomerName        string `json:"customerName"`
	Country             string `json:"country"`
	City                string `json:"city"`
	Line1               string `json:"line1"`
	IBAN                string `json:"iban"`
	SortCode            string `json:"sortCode"`
	AccountNumber       string `json:"accountNumber"`
}

type payoutResponse struct {
	PayoutID   string `json:"payoutId"`
	FlowState  string `json:"flowState"`
	Status     string `json:"status"`
	QuoteID    string `json:"quoteId,omitempty"`
	TransferID string `json:"transferId,omitempty"`
}

type server struct {
	registry *connector.Registry
	tracker  *reconcile.Tracker
	enforcer *policy.Enforcer
}

func newServer(cfg *config.Config) (*server, error) {
	registry := connector.NewRegistry()

	wiseAdapter, err := wise.NewAdapter(cfg.RetryOverridesFor(wise.ConnectorName))
	if err != nil {
		return nil, err
	}
	if err := registry.RegisterPayout(wiseAdapter); err != nil {
		return nil, err
	}
	if err := registry.RegisterPayout(mock.NewAdapter("mock-payout")); err != nil {
		return nil, err
	}

	paypalAdapter, err := paypal.NewAdapter(cfg.RetryOverridesFor(paypal.ConnectorName))
	if err != nil {
		return nil, err
	}
	if err := registry.RegisterPayment(paypalAdapter); err != nil {
		return nil, err
	}
	registry.Seal()

	enforcer, err := policy.NewEnforcer(cfg.Rules())
	if err != nil {
		return nil, err
	}

	return &server{
		registry: registry,
		tracker:  reconcile.NewTracker(),
		enforcer: enforcer,
	}, nil
}

// demoTransport scripts plausible connector responses so the full flow can
// be exercised without remote credentials.
func demoTransport() connector.Transport {
	return &mock.Transport{Script: []mock.Exchange{
		{StatusCode: 200, Body: []byte(`{"id": 129, "profile": 16, "accountHolderName": "demo", "currency": "GBP", "type": "sort_code"}`)},
		{StatusCode: 200, Body: []byte(`{"id": "q-7df0", "status": "PENDING", "sourceCurrency": "GBP", "targetCurrency": "GBP", "payOut": "BANK_TRANSFER"}`)},
		{StatusCode: 200, Body: []byte(`{"id": 5523, "targetAccount": 129, "quoteUuid": "q-7df0", "status": "processing"}`)},
		{StatusCode: 200, Body: []byte(`{"status": "COMPLETED", "balanceTransactionId": 881}`)},
	}}
}

func (s *server) processPayoutHandler(c *gin.Context) {
	var req payoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}
	if req.PayoutID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payoutId is required"})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	payoutType := domain.PayoutTypeBank
	if req.PayoutType == "card" {
		payoutType = domain.PayoutTypeCard
	}
	connectorCustomerID := "129"
	canonical := &domain.PayoutsRequest{
		PayoutID:            req.PayoutID,
		Amount:              req.Amount,
		SourceCurrency:      req.SourceCurrency,
		DestinationCurrency: req.DestinationCurrency,
		PayoutType:          payoutType,
		EntityType:          domain.EntityIndividual,
		ConnectorCustomerID: &connectorCustomerID,
		CustomerDetails:     &domain.CustomerDetails{Name: req.CustomerName},
		BillingAddress:      &domain.Address{Country: req.Country, City: req.City, Line1: req.Line1},
		PayoutMethodData: &domain.PayoutMethodData{Bank: &domain.BankDetails{
			IBAN:          req.IBAN,
			SortCode:      req.SortCode,
			AccountNumber: req.AccountNumber,
		}},
	}

	adapter, err := s.registry.Payout(wise.ConnectorName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	engine, err := payout.NewEngine(
		adapter,
		demoTransport(),
		domain.ApiKeyProfileCredential(os.Getenv("WISE_API_KEY"), "16"),
		s.tracker,
		s.enforcer,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	flow := payout.NewFlow(req.PayoutID)
	ctx := c.Request.Context()
	steps := []func(context.Context, *payout.Flow, *domain.PayoutsRequest) (*payout.StepResult, error){
		engine.CreateRecipient,
		engine.CreateQuote,
		engine.CreateTransfer,
		engine.Fulfill,
	}
	for _, step := range steps {
		if _, err := step(ctx, flow, canonical); err != nil {
			status := http.StatusBadGateway
			if connector.IsKind(err, connector.ErrValidation) || connector.IsKind(err, connector.ErrUnsupportedCapability) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{
				"error":     err.Error(),
				"flowState": flow.State().String(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, payoutResponse{
		PayoutID:   req.PayoutID,
		FlowState:  flow.State().String(),
		Status:     flow.LastStatus().String(),
		QuoteID:    flow.QuoteID(),
		TransferID: flow.TransferID(),
	})
}

type authorizeRequest struct {
	PaymentID   string `json:"paymentId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	CardNumber  string `json:"cardNumber"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
}

func (s *server) authorizePaymentHandler(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}
	if req.Amount <= 0 || req.Currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and currency are required"})
		return
	}

	adapter, err := s.registry.Payment(paypal.ConnectorName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	auth, err := adapter.BuildAuth(domain.OAuthCredential(os.Getenv("PAYPAL_ACCESS_TOKEN")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	outReq, err := adapter.BuildAuthorizeRequest(auth, &domain.PaymentsAuthorizeRequest{
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		CardDetails: &domain.CardDetails{
			CardNumber:  req.CardNumber,
			ExpiryMonth: req.ExpiryMonth,
			ExpiryYear:  req.ExpiryYear,
		},
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transport := &mock.Transport{Script: []mock.Exchange{
		{StatusCode: 201, Body: []byte(`{"id": "5O190127TN364715T", "status": "CREATED"}`)},
	}}
	resp, err := transport.Do(c.Request.Context(), outReq)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	parsed, err := adapter.ParseAuthorizeResponse(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if _, err := s.tracker.ObservePayment(req.PaymentID, parsed.Status); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paymentId":              req.PaymentID,
		"status":                 parsed.Status.String(),
		"connectorTransactionId": parsed.ConnectorTransactionID,
	})
}

func setupRouter(s *server) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("payment-router"))
	router.POST("/payouts", s.processPayoutHandler)
	router.POST("/payments/authorize", s.authorizePaymentHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	return router
}

func initTracing() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating stdout trace exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func main() {
	log.Println("Starting payment-router server...")

	shutdown, err := initTracing()
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("Trace provider shutdown: %v", err)
		}
	}()

	cfg := config.Default()
	if path := os.Getenv("ROUTER_CONFIG"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	srv, err := newServer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	router := setupRouter(srv)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
