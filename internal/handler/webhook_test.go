package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/foodsave/reservation-api/internal/model"
	"github.com/foodsave/reservation-api/internal/queue"
)

const testSecret = "whsec_test"

// signHeader produces a provider-style signature header for a payload.
func signHeader(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func sessionEventJSON(eventType, reservationID, sessionID string) string {
	meta := "{}"
	if reservationID != "" {
		meta = fmt.Sprintf(`{"reservationId":%q}`, reservationID)
	}
	return fmt.Sprintf(`{
		"id": "evt_1",
		"type": %q,
		"data": {"object": {"id": %q, "payment_intent": "pi_1", "metadata": %s}}
	}`, eventType, sessionID, meta)
}

// publishRecorder counts published paid events.
type publishRecorder struct {
	events []queue.ReservationPaidEvent
}

func (p *publishRecorder) publish(ctx context.Context, ev queue.ReservationPaidEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func deliver(t *testing.T, h *WebhookHandler, payload, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(payload))
	if header != "" {
		req.Header.Set("Stripe-Signature", header)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.HandleEvent(e.NewContext(req, rec)))
	return rec
}

func pendingReservation(store *fakeStore) *model.Reservation {
	res := &model.Reservation{
		Items:        []model.LineItem{{PackageID: "fresh", PackageName: "Cerstve pecivo", UnitPriceCents: 1000, Quantity: 2}},
		TotalCents:   2000,
		CustomerName: "Jana",
		Email:        "jana@example.com",
		PickupDate:   "2026-03-11",
		PickupTime:   "17:00",
		Status:       model.StatusPending,
	}
	_ = store.Create(context.Background(), res)
	return res
}

func TestWebhookRejectsInvalidSignatureBeforeLookup(t *testing.T) {
	store := newFakeStore()
	pub := &publishRecorder{}
	h := NewWebhookHandler(store, testSecret, pub.publish)

	payload := sessionEventJSON("checkout.session.completed", "res-1", "cs_1")
	rec := deliver(t, h, payload, signHeader([]byte(payload), "wrong-secret"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, store.lookups, "no store access before signature verification")
	require.Empty(t, pub.events)
}

func TestWebhookMissingSignatureHeader(t *testing.T) {
	h := NewWebhookHandler(newFakeStore(), testSecret, nil)
	payload := sessionEventJSON("checkout.session.completed", "res-1", "cs_1")
	rec := deliver(t, h, payload, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookNotConfigured(t *testing.T) {
	h := NewWebhookHandler(newFakeStore(), "", nil)
	rec := deliver(t, h, "{}", "t=1,v1=00")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookCompletedTransitionsAndNotifiesOnce(t *testing.T) {
	store := newFakeStore()
	pub := &publishRecorder{}
	h := NewWebhookHandler(store, testSecret, pub.publish)
	res := pendingReservation(store)

	payload := sessionEventJSON("checkout.session.completed", res.ID, "cs_1")
	rec := deliver(t, h, payload, signHeader([]byte(payload), testSecret))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.StatusPaid, store.status(res.ID))
	require.Len(t, pub.events, 1)
	require.Equal(t, res.ID, pub.events[0].ReservationID)
	require.Equal(t, "jana@example.com", pub.events[0].Email)
	require.Equal(t, int64(2000), pub.events[0].TotalCents)

	// Redelivery acknowledges but is a business no-op: still one
	// transition, still one published event.
	rec = deliver(t, h, payload, signHeader([]byte(payload), testSecret))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.StatusPaid, store.status(res.ID))
	require.Len(t, pub.events, 1)
}

func TestWebhookExpiredAfterPaidIsNoOp(t *testing.T) {
	store := newFakeStore()
	pub := &publishRecorder{}
	h := NewWebhookHandler(store, testSecret, pub.publish)
	res := pendingReservation(store)

	completed := sessionEventJSON("checkout.session.completed", res.ID, "cs_1")
	deliver(t, h, completed, signHeader([]byte(completed), testSecret))

	expired := sessionEventJSON("checkout.session.expired", res.ID, "cs_1")
	rec := deliver(t, h, expired, signHeader([]byte(expired), testSecret))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.StatusPaid, store.status(res.ID), "terminal status must not change")
	require.Len(t, pub.events, 1)
}

func TestWebhookExpiredTransitionsWithoutNotification(t *testing.T) {
	store := newFakeStore()
	pub := &publishRecorder{}
	h := NewWebhookHandler(store, testSecret, pub.publish)
	res := pendingReservation(store)

	expired := sessionEventJSON("checkout.session.expired", res.ID, "cs_1")
	rec := deliver(t, h, expired, signHeader([]byte(expired), testSecret))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.StatusExpired, store.status(res.ID))
	require.Empty(t, pub.events)
}

func TestWebhookCompletedWithoutMetadataAcknowledges(t *testing.T) {
	store := newFakeStore()
	pub := &publishRecorder{}
	h := NewWebhookHandler(store, testSecret, pub.publish)

	payload := sessionEventJSON("checkout.session.completed", "", "cs_1")
	rec := deliver(t, h, payload, signHeader([]byte(payload), testSecret))
	require.Equal(t, http.StatusOK, rec.Code, "malformed events acknowledge to stop redelivery")
	require.Empty(t, pub.events)
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	store := newFakeStore()
	res := pendingReservation(store)
	h := NewWebhookHandler(store, testSecret, nil)

	payload := sessionEventJSON("payment_intent.created", res.ID, "cs_1")
	rec := deliver(t, h, payload, signHeader([]byte(payload), testSecret))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.StatusPending, store.status(res.ID))
}
