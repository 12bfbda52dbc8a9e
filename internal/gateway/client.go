// Package gateway implements the payer-platform (nphies) connector: OAuth
// client-credentials auth, schema validation of outgoing claims, Saudi ID
// validation, claim submission, status checks, pre-authorization and payment
// reconciliation. Calls go through a shared rate limiter and circuit breaker
// so a degraded payer platform cannot stall the coding pipeline.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/brainsait/drg-suite/internal/domain"
)

const (
	apiVersion   = "2.1"
	sourceSystem = "BrainSAIT-DRG-Suite"
	oauthScope   = "claims preauth payments"

	// tokenExpiryBuffer forces a refresh slightly before the token actually
	// expires so an in-flight request never carries a stale token.
	tokenExpiryBuffer = 120 * time.Second
)

// ClaimStatus is the payer's view of a previously submitted claim.
type ClaimStatus struct {
	ClaimID     string    `json:"claimId"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PreAuthRequest asks the payer to approve a service before it is performed.
type PreAuthRequest struct {
	PatientID   string             `json:"patientId"`
	ProviderCR  string             `json:"providerCr"`
	Items       []domain.ClaimItem `json:"items"`
	RequestedAt time.Time          `json:"requestedAt"`
}

// PreAuthResponse is the payer's pre-authorization decision.
type PreAuthResponse struct {
	AuthorizationID string `json:"authorizationId"`
	Approved        bool   `json:"approved"`
	Reason          string `json:"reason,omitempty"`
}

// PaymentReconciliation matches a payer remittance against submitted claims.
type PaymentReconciliation struct {
	PaymentID string   `json:"paymentId"`
	ClaimIDs  []string `json:"claimIds"`
	Amount    float64  `json:"amount"`
	Currency  string   `json:"currency"`
}

// ReconcileResult reports the outcome of a reconciliation request.
type ReconcileResult struct {
	PaymentID string `json:"paymentId"`
	Matched   int    `json:"matched"`
	Unmatched int    `json:"unmatched"`
}

// Metrics is a point-in-time snapshot of connector health.
type Metrics struct {
	TotalRequests       int64     `json:"total_requests"`
	SuccessfulRequests  int64     `json:"successful_requests"`
	FailedRequests      int64     `json:"failed_requests"`
	ValidationErrors    int64     `json:"validation_errors"`
	LastRequestTime     time.Time `json:"last_request_time"`
	AverageResponseTime float64   `json:"average_response_time_seconds"`
	SuccessRatePercent  float64   `json:"success_rate_percentage"`
}

// Client is the payer-gateway connector. It implements
// domain.ClaimSubmitter. A single Client is safe for concurrent use.
type Client struct {
	cfg        domain.GatewayConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *StatusCache
	logger     *logrus.Logger

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time

	metricsMu sync.Mutex
	metrics   Metrics
}

// NewClient creates a connector. The status cache is optional; pass nil to
// hit the payer on every status check.
func NewClient(cfg domain.GatewayConfig, cache *StatusCache, logger *logrus.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerOpenPeriod == 0 {
		cfg.BreakerOpenPeriod = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nphies",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     cfg.BreakerOpenPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("gateway circuit breaker state changed")
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		breaker:    breaker,
		cache:      cache,
		logger:     logger,
	}
}

// submissionEnvelope wraps the claim with the submission metadata the payer
// platform requires on every claim.
type submissionEnvelope struct {
	*domain.ClaimPayload
	SubmissionTimestamp string `json:"submissionTimestamp"`
	APIVersion          string `json:"apiVersion"`
	SourceSystem        string `json:"sourceSystem"`
}

// SubmitClaim validates the claim and posts it to the payer. Validation
// failures are reported without touching the network.
func (c *Client) SubmitClaim(ctx context.Context, payload *domain.ClaimPayload) (*domain.ClaimAck, error) {
	if violations := ValidateClaimPayload(payload); len(violations) > 0 {
		c.countValidationError()
		return nil, domain.NewValidationError("claim validation failed", violations)
	}

	envelope := submissionEnvelope{
		ClaimPayload:        payload,
		SubmissionTimestamp: time.Now().UTC().Format(time.RFC3339),
		APIVersion:          apiVersion,
		SourceSystem:        sourceSystem,
	}

	var ack domain.ClaimAck
	if err := c.doJSON(ctx, http.MethodPost, "/claims", envelope, &ack); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"claim_number":     payload.ClaimNumber,
		"gateway_claim_id": ack.GatewayClaimID,
		"status":           ack.Status,
	}).Info("claim submitted to payer gateway")
	return &ack, nil
}

// CheckStatus fetches the payer-side status of a claim, serving from the
// cache when a recent answer is available.
func (c *Client) CheckStatus(ctx context.Context, claimID string) (*ClaimStatus, error) {
	if claimID == "" {
		return nil, domain.NewValidationError("claim ID is required for status check", nil)
	}

	if cached, ok := c.cache.Get(ctx, claimID); ok {
		return cached, nil
	}

	var status ClaimStatus
	path := fmt.Sprintf("/claims/%s/status", url.PathEscape(claimID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}

	c.cache.Set(ctx, claimID, &status)
	return &status, nil
}

// RequestPreAuth asks the payer for pre-authorization.
func (c *Client) RequestPreAuth(ctx context.Context, req *PreAuthRequest) (*PreAuthResponse, error) {
	var resp PreAuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/preauth", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReconcilePayment matches a remittance against submitted claims.
func (c *Client) ReconcilePayment(ctx context.Context, rec *PaymentReconciliation) (*ReconcileResult, error) {
	var result ReconcileResult
	if err := c.doJSON(ctx, http.MethodPost, "/payments/reconcile", rec, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Metrics returns a snapshot of connector health counters.
func (c *Client) Metrics() Metrics {
	c.metricsMu.Lock()
	defer c.metricsMu.Unlock()
	m := c.metrics
	if m.TotalRequests > 0 {
		m.SuccessRatePercent = float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100
	}
	return m
}

// doJSON runs one authenticated JSON round trip through the rate limiter and
// circuit breaker.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.NewTimeoutError("rate limiter wait aborted", err)
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.NewTransportError("payer gateway circuit open", 0, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	token, err := c.oauthToken(ctx)
	if err != nil {
		c.recordRequest(false, 0)
		return err
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Version", apiVersion)
	req.Header.Set("X-Request-ID", "brainsait-"+uuid.NewString())
	req.Header.Set("X-Timestamp", time.Now().UTC().Format(time.RFC3339))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordRequest(false, 0)
		if isTimeout(err) {
			return domain.NewTimeoutError(fmt.Sprintf("request to %s timed out", path), err)
		}
		return domain.NewTransportError(fmt.Sprintf("request to %s failed", path), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.recordRequest(false, 0)
		detail := extractErrorDetails(resp.Body)
		return domain.NewTransportError(
			fmt.Sprintf("payer gateway returned %d for %s %s: %s", resp.StatusCode, method, path, detail),
			resp.StatusCode, nil)
	}
	c.recordRequest(true, time.Since(start))

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewTransportError(fmt.Sprintf("decoding %s %s response", method, path), resp.StatusCode, err)
	}
	return nil
}

// oauthToken returns a valid access token, refreshing via the
// client-credentials grant when the cached one is within the expiry buffer.
func (c *Client) oauthToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Add(tokenExpiryBuffer).Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {oauthScope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", domain.NewAuthError("building token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", domain.NewTimeoutError("token request timed out", err)
		}
		return "", domain.NewAuthError("token request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := extractErrorDetails(resp.Body)
		return "", domain.NewAuthError(fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, detail), nil)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", domain.NewAuthError("decoding token response", err)
	}
	if token.AccessToken == "" {
		return "", domain.NewAuthError("token response missing access_token", nil)
	}
	if token.ExpiresIn == 0 {
		token.ExpiresIn = 3600
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	c.logger.Debug("payer gateway token refreshed")
	return c.accessToken, nil
}

// extractErrorDetails pulls the payer's structured error fields out of an
// error response, falling back to the truncated raw body.
func extractErrorDetails(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}

	var payload struct {
		ErrorCode    string   `json:"errorCode"`
		ErrorMessage string   `json:"errorMessage"`
		Message      string   `json:"message"`
		Details      []string `json:"details"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && (payload.ErrorCode != "" || payload.ErrorMessage != "" || payload.Message != "") {
		msg := payload.ErrorMessage
		if msg == "" {
			msg = payload.Message
		}
		detail := fmt.Sprintf("Code: %s, Message: %s", payload.ErrorCode, msg)
		if len(payload.Details) > 0 {
			detail += ", Details: " + strings.Join(payload.Details, "; ")
		}
		return detail
	}

	if len(raw) > 500 {
		raw = raw[:500]
	}
	return string(raw)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) recordRequest(success bool, elapsed time.Duration) {
	c.metricsMu.Lock()
	defer c.metricsMu.Unlock()
	c.metrics.TotalRequests++
	c.metrics.LastRequestTime = time.Now().UTC()
	if success {
		c.metrics.SuccessfulRequests++
		n := float64(c.metrics.SuccessfulRequests)
		c.metrics.AverageResponseTime = (c.metrics.AverageResponseTime*(n-1) + elapsed.Seconds()) / n
	} else {
		c.metrics.FailedRequests++
	}
}

func (c *Client) countValidationError() {
	c.metricsMu.Lock()
	defer c.metricsMu.Unlock()
	c.metrics.ValidationErrors++
}
