package payment

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"
)

// Webhook event types the service reacts to.  Anything else is
// acknowledged without action.
const (
    EventCheckoutSessionCompleted = "checkout.session.completed"
    EventCheckoutSessionExpired   = "checkout.session.expired"
)

// DefaultTolerance bounds how old a webhook timestamp may be before the
// payload is rejected, limiting replay of captured deliveries.
const DefaultTolerance = 5 * time.Minute

// ErrInvalidSignature is returned when a webhook payload does not verify
// against the shared secret.  Signature verification is the sole
// authentication boundary for status mutations, so callers must abort
// processing on this error.
var ErrInvalidSignature = errors.New("webhook signature verification failed")

// Event is a payment provider webhook notification.  Data.Object holds
// the checkout session the event is about.
type Event struct {
    ID   string `json:"id"`
    Type string `json:"type"`
    Data struct {
        Object EventSession `json:"object"`
    } `json:"data"`
}

// EventSession is the checkout session embedded in a webhook event.
type EventSession struct {
    ID            string            `json:"id"`
    PaymentIntent string            `json:"payment_intent"`
    Metadata      map[string]string `json:"metadata"`
}

// ReservationID extracts the correlation metadata linking the session to
// a reservation.  An empty result marks a malformed event.
func (s EventSession) ReservationID() string {
    return s.Metadata["reservationId"]
}

// ConstructEvent verifies the signature header against the shared secret
// and parses the payload into an Event.  The header format is Stripe's
// "t=<unix>,v1=<hex>" scheme: the signed message is "<t>.<payload>" and
// at least one v1 signature must match the expected HMAC-SHA256.  The
// timestamp must be within DefaultTolerance of the current time.
func ConstructEvent(payload []byte, header, secret string) (Event, error) {
    return constructEventAt(payload, header, secret, DefaultTolerance, time.Now())
}

func constructEventAt(payload []byte, header, secret string, tolerance time.Duration, now time.Time) (Event, error) {
    var event Event
    ts, sigs, err := parseSignatureHeader(header)
    if err != nil {
        return event, err
    }
    if d := now.Sub(time.Unix(ts, 0)); d > tolerance || d < -tolerance {
        return event, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
    }
    expected := computeSignature(ts, payload, secret)
    valid := false
    for _, sig := range sigs {
        if hmac.Equal(sig, expected) {
            valid = true
            break
        }
    }
    if !valid {
        return event, ErrInvalidSignature
    }
    if err := json.Unmarshal(payload, &event); err != nil {
        return event, fmt.Errorf("webhook payload: %w", err)
    }
    return event, nil
}

// parseSignatureHeader splits the comma-separated header into the signed
// timestamp and the list of v1 signatures.  Unknown schemes are skipped,
// matching the provider's forward-compatibility contract.
func parseSignatureHeader(header string) (int64, [][]byte, error) {
    var ts int64 = -1
    var sigs [][]byte
    for _, pair := range strings.Split(header, ",") {
        k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
        if !ok {
            continue
        }
        switch k {
        case "t":
            n, err := strconv.ParseInt(v, 10, 64)
            if err != nil {
                return 0, nil, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
            }
            ts = n
        case "v1":
            sig, err := hex.DecodeString(v)
            if err != nil {
                continue // skip malformed entries, another v1 may verify
            }
            sigs = append(sigs, sig)
        }
    }
    if ts < 0 || len(sigs) == 0 {
        return 0, nil, fmt.Errorf("%w: missing timestamp or signature", ErrInvalidSignature)
    }
    return ts, sigs, nil
}

// computeSignature returns the expected HMAC-SHA256 of "<t>.<payload>".
func computeSignature(ts int64, payload []byte, secret string) []byte {
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write([]byte(strconv.FormatInt(ts, 10)))
    mac.Write([]byte("."))
    mac.Write(payload)
    return mac.Sum(nil)
}
