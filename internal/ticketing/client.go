package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/eventku-checkout/internal/obs"
	"github.com/noah-isme/eventku-checkout/internal/session"
)

// Client talks to the upstream EventKu ticketing API. All state of record
// lives upstream; this client only reads offers and balances and submits
// transactions on behalf of the authenticated user.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Creds   session.TokenSource
	Logger  zerolog.Logger
	Metrics *obs.UpstreamMetrics
}

// New constructs a client with an instrumented transport. No retry layer is
// attached: every upstream failure is terminal for the current attempt and
// retrying is an explicit user action.
func New(baseURL string, creds session.TokenSource, logger zerolog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		Creds:  creds,
		Logger: logger,
	}
}

// Ping probes the upstream API with an unauthenticated listing request.
// Used by readiness checks only.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/events", nil, false)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Event fetches the offer for a single event. Unauthenticated.
func (c *Client) Event(ctx context.Context, id int64) (EventOffer, error) {
	var wire eventWire
	if err := c.getJSON(ctx, fmt.Sprintf("/events/%d", id), false, &wire); err != nil {
		return EventOffer{}, err
	}
	return wire.toOffer(), nil
}

// Vouchers lists the caller's vouchers scoped to an event. Authenticated.
func (c *Client) Vouchers(ctx context.Context, eventID int64) ([]Voucher, error) {
	var out []Voucher
	if err := c.getJSON(ctx, fmt.Sprintf("/vouchers?eventId=%d", eventID), true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Points fetches the caller's points balance. Authenticated.
func (c *Client) Points(ctx context.Context) (Balances, error) {
	var out Balances
	if err := c.getJSON(ctx, "/points", true, &out); err != nil {
		return Balances{}, err
	}
	return out, nil
}

// Coupons fetches the caller's coupon balance. Authenticated.
func (c *Client) Coupons(ctx context.Context) (Balances, error) {
	var out Balances
	if err := c.getJSON(ctx, "/coupons", true, &out); err != nil {
		return Balances{}, err
	}
	return out, nil
}

// CreateTransaction submits a transaction-creation request. Each attempt
// carries a fresh Idempotency-Key so an upstream that honours the header can
// dedupe accidental resubmissions.
func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (CreatedTransaction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return CreatedTransaction{}, fmt.Errorf("ticketing: encode transaction: %w", err)
	}
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/transaction", bytes.NewReader(body), true)
	if err != nil {
		return CreatedTransaction{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	var envelope struct {
		Data CreatedTransaction `json:"data"`
	}
	if err := c.do(httpReq, &envelope); err != nil {
		return CreatedTransaction{}, err
	}
	return envelope.Data, nil
}

// Transaction fetches a transaction by id for the payment page. Authenticated.
func (c *Client) Transaction(ctx context.Context, id int64) (Transaction, error) {
	var out Transaction
	if err := c.getJSON(ctx, fmt.Sprintf("/transaction/%d", id), true, &out); err != nil {
		return Transaction{}, err
	}
	return out, nil
}

// SubmitProof uploads a payment-proof file for the transaction. Authenticated.
func (c *Client) SubmitProof(ctx context.Context, id int64, filename string, file io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("paymentProof", filename)
	if err != nil {
		return fmt.Errorf("ticketing: build proof form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("ticketing: read proof: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("ticketing: finish proof form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/transaction/%d/payment", id), &buf, true)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, authed bool, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, authed)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("ticketing: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		s, err := c.Creds.Session(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.observe(req, 0, start)
		// Context cancellation is the caller navigating away; do not relabel it.
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		c.Logger.Warn().Err(err).Str("path", req.URL.Path).Msg("upstream unreachable")
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.observe(req, resp.StatusCode, start)

	if resp.StatusCode >= 400 {
		message := decodeErrorMessage(resp.Body, resp.Status)
		c.Logger.Debug().Int("status", resp.StatusCode).Str("path", req.URL.Path).Str("message", message).Msg("upstream rejected")
		return &RemoteError{Status: resp.StatusCode, Message: message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) observe(req *http.Request, status int, start time.Time) {
	if c.Metrics == nil {
		return
	}
	c.Metrics.Observe(req.Method, req.URL.Path, status, time.Since(start))
}

// decodeErrorMessage extracts the human-readable message from an upstream
// error body. The upstream is inconsistent: some endpoints answer
// {"message": ...}, others {"error": ...} with either a string or an object.
func decodeErrorMessage(body io.Reader, fallback string) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return fallback
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Error) > 0 {
		var text string
		if err := json.Unmarshal(payload.Error, &text); err == nil && text != "" {
			return text
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return fallback
}
