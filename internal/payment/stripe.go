// Package payment talks to the Stripe Checkout API and verifies the
// signed webhook events Stripe delivers about session outcomes.  The
// service only needs two calls (create a session, retrieve a session), so
// the client is a small wrapper over the form-encoded REST API rather
// than a full SDK.
package payment

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"
)

const defaultAPIBase = "https://api.stripe.com"

// ErrNotConfigured is returned by client methods when no secret key is
// set.  Callers translate it into a feature-local configuration error.
var ErrNotConfigured = errors.New("payment gateway not configured")

// CheckoutSession is the subset of Stripe's checkout session object the
// service cares about.  Metadata carries the reservation correlation.
type CheckoutSession struct {
    ID            string            `json:"id"`
    URL           string            `json:"url"`
    Status        string            `json:"status"`
    PaymentIntent string            `json:"payment_intent"`
    Metadata      map[string]string `json:"metadata"`
}

// SessionLineItem is one priced line of a checkout session.  Values come
// from the reservation's snapshotted line items, never from the client.
type SessionLineItem struct {
    Name            string // product display name
    UnitAmountCents int64  // unit price in cents
    Quantity        int    // ordered quantity
}

// CreateSessionParams collects everything needed to open a hosted
// checkout session tied to a reservation.
type CreateSessionParams struct {
    ReservationID string // correlation ID stored in session metadata
    Items         []SessionLineItem
    SuccessURL    string
    CancelURL     string
}

// Client calls the Stripe REST API with a secret key.  A zero-key client
// is valid but refuses every call with ErrNotConfigured, which lets the
// rest of the service start without payment credentials.
type Client struct {
    secretKey string
    apiBase   string
    http      *http.Client
}

// NewClient builds a client for the given secret key.  An empty key is
// allowed and produces a client that reports ErrNotConfigured.
func NewClient(secretKey string) *Client {
    return &Client{
        secretKey: secretKey,
        apiBase:   defaultAPIBase,
        http:      &http.Client{Timeout: 15 * time.Second},
    }
}

// NewClientWithBase is NewClient with an overridable API base URL.  Used
// by tests to point the client at a local server.
func NewClientWithBase(secretKey, apiBase string) *Client {
    c := NewClient(secretKey)
    c.apiBase = strings.TrimRight(apiBase, "/")
    return c
}

// Configured reports whether a secret key is present.
func (c *Client) Configured() bool { return c.secretKey != "" }

// CreateCheckoutSession opens a payment-mode checkout session for the
// given line items.  The reservation ID is attached both as metadata and
// as the client reference so the webhook and reconciliation paths can
// correlate the session back to the reservation.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (*CheckoutSession, error) {
    if !c.Configured() {
        return nil, ErrNotConfigured
    }
    form := url.Values{}
    form.Set("mode", "payment")
    for i, it := range p.Items {
        prefix := "line_items[" + strconv.Itoa(i) + "]"
        form.Set(prefix+"[price_data][currency]", "eur")
        form.Set(prefix+"[price_data][product_data][name]", it.Name)
        form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(it.UnitAmountCents, 10))
        form.Set(prefix+"[quantity]", strconv.Itoa(it.Quantity))
    }
    form.Set("success_url", p.SuccessURL)
    form.Set("cancel_url", p.CancelURL)
    form.Set("metadata[reservationId]", p.ReservationID)
    form.Set("client_reference_id", p.ReservationID)

    return c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form)
}

// RetrieveCheckoutSession fetches a checkout session by ID.  It is used
// by the reconciliation path when no local reservation carries the
// session ID yet.
func (c *Client) RetrieveCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
    if !c.Configured() {
        return nil, ErrNotConfigured
    }
    return c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) (*CheckoutSession, error) {
    var body io.Reader
    if form != nil {
        body = strings.NewReader(form.Encode())
    }
    req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
    if err != nil {
        return nil, err
    }
    req.Header.Set("Authorization", "Bearer "+c.secretKey)
    if form != nil {
        req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    }
    resp, err := c.http.Do(req)
    if err != nil {
        return nil, err
    }
    defer resp.Body.Close()
    raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
    if err != nil {
        return nil, err
    }
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return nil, fmt.Errorf("stripe: %s %s: %s", method, path, apiErrorMessage(raw, resp.StatusCode))
    }
    var session CheckoutSession
    if err := json.Unmarshal(raw, &session); err != nil {
        return nil, fmt.Errorf("stripe: decode session: %w", err)
    }
    return &session, nil
}

// apiErrorMessage extracts Stripe's error message from a failed response
// body, falling back to the HTTP status when the body is not parseable.
func apiErrorMessage(raw []byte, status int) string {
    var payload struct {
        Error struct {
            Message string `json:"message"`
        } `json:"error"`
    }
    if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
        return payload.Error.Message
    }
    return "http status " + strconv.Itoa(status)
}
