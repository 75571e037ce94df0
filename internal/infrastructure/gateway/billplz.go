// Package gateway talks to the Billplz gateway function, a single hosted
// endpoint that creates and verifies bills on the operator's behalf.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/webdevsha/permitak/internal/domain/payment"
	"github.com/webdevsha/permitak/internal/domain/shared"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	actionCreateBill = "create_bill"
	actionVerifyBill = "verify_bill"

	maxResponseBytes = 1 << 20
)

var _ payment.Gateway = (*BillplzClient)(nil)

// CallObserver receives the outcome of every gateway call
type CallObserver func(action string, elapsed time.Duration, err error)

// BillplzClient implements payment.Gateway against the gateway function
type BillplzClient struct {
	functionURL  string
	apiKey       string
	collectionID string
	httpClient   *http.Client
	logger       *zap.Logger
	observe      CallObserver
}

// Option configures a BillplzClient
type Option func(*BillplzClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(b *BillplzClient) { b.httpClient = c }
}

// WithCallObserver registers a hook run after each call
func WithCallObserver(fn CallObserver) Option {
	return func(b *BillplzClient) { b.observe = fn }
}

// NewBillplzClient creates a gateway client from configuration
func NewBillplzClient(cfg config.GatewayConfig, logger *zap.Logger, opts ...Option) (*BillplzClient, error) {
	if strings.TrimSpace(cfg.FunctionURL) == "" {
		return nil, payment.ErrGatewayNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &BillplzClient{
		functionURL:  cfg.FunctionURL,
		apiKey:       cfg.APIKey,
		collectionID: cfg.CollectionID,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger.Named("gateway"),
		observe:      func(string, time.Duration, error) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type createBillBody struct {
	Action       string `json:"action"`
	CollectionID string `json:"collection_id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
	RedirectURL  string `json:"redirect_url"`
	CallbackURL  string `json:"callback_url"`
	Reference    string `json:"reference_1,omitempty"`
}

type verifyBillBody struct {
	Action string `json:"action"`
	BillID string `json:"bill_id"`
}

// CreateBill creates a bill for the amount in sen and returns its checkout URL
func (c *BillplzClient) CreateBill(ctx context.Context, req payment.CreateBillRequest) (*payment.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body := createBillBody{
		Action:       actionCreateBill,
		CollectionID: c.collectionID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Amount:       req.AmountInSen(),
		Description:  req.Description,
		RedirectURL:  req.RedirectURL,
		CallbackURL:  req.RedirectURL,
		Reference:    req.Reference,
	}

	raw, err := c.call(ctx, actionCreateBill, body)
	if err != nil {
		return nil, err
	}
	var bill payment.Bill
	if err := json.Unmarshal(raw, &bill); err != nil || bill.ID == "" || bill.URL == "" {
		return nil, gatewayError(fmt.Sprintf("%v: create_bill returned no bill", payment.ErrGatewayInvalidResponse))
	}
	c.logger.Info("Bill created", zap.String("bill_id", bill.ID), zap.Int64("amount_sen", body.Amount))
	return &bill, nil
}

// VerifyBill asks the gateway whether billID has been paid
func (c *BillplzClient) VerifyBill(ctx context.Context, billID string) (*payment.BillStatus, error) {
	if strings.TrimSpace(billID) == "" {
		return nil, shared.NewValidationError("Bill id is required")
	}
	raw, err := c.call(ctx, actionVerifyBill, verifyBillBody{Action: actionVerifyBill, BillID: billID})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Paid  *bool  `json:"paid"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, gatewayError(fmt.Sprintf("%v: %v", payment.ErrGatewayInvalidResponse, err))
	}
	if resp.Paid == nil && resp.State == "" {
		return nil, gatewayError(fmt.Sprintf("%v: verify_bill returned no settlement", payment.ErrGatewayInvalidResponse))
	}
	paid := resp.State == "paid"
	if resp.Paid != nil {
		paid = *resp.Paid
	}
	return &payment.BillStatus{BillID: billID, Paid: paid, Raw: json.RawMessage(raw)}, nil
}

func (c *BillplzClient) call(ctx context.Context, action string, payload any) (raw []byte, err error) {
	start := time.Now()
	defer func() { c.observe(action, time.Since(start), err) }()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to encode %s: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.functionURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Gateway unreachable", zap.String("action", action), zap.Error(err))
		return nil, gatewayError(fmt.Sprintf("%v: %v", payment.ErrGatewayUnavailable, err))
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, gatewayError(fmt.Sprintf("%v: %v", payment.ErrGatewayInvalidResponse, err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := ErrorMessage(raw)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("Gateway request failed",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, gatewayError(msg)
	}
	if msg := embeddedError(raw); msg != "" {
		return nil, gatewayError(msg)
	}
	return raw, nil
}

func gatewayError(msg string) error {
	return shared.NewDomainError(payment.ErrGateway.Code, "Payment gateway error: "+msg)
}

