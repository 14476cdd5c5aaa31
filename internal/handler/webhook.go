package handler

import (
    "context"
    "io"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/foodsave/reservation-api/internal/model"
    "github.com/foodsave/reservation-api/internal/payment"
    "github.com/foodsave/reservation-api/internal/queue"
)

// maxWebhookBody bounds how much of a webhook payload is read.
const maxWebhookBody = 1 << 20

// PaidPublisher hands a paid-reservation event to the notification
// pipeline.  queue_publisher.PublishReservationPaid satisfies it.
type PaidPublisher func(ctx context.Context, ev queue.ReservationPaidEvent) error

// WebhookHandler consumes signed payment provider events and advances
// reservation status.  Signature verification is the only authentication
// on this route; once a payload verifies, the provider always receives an
// acknowledgment so it stops redelivering.  The business effects behind
// the acknowledgment are idempotent and safe to retry.
type WebhookHandler struct {
    Store   ReservationStore
    Secret  string // shared webhook signing secret
    Publish PaidPublisher
}

// NewWebhookHandler constructs a WebhookHandler.  Publish may be nil when
// notifications are disabled.
func NewWebhookHandler(store ReservationStore, secret string, publish PaidPublisher) *WebhookHandler {
    if store == nil {
        panic("nil store passed to NewWebhookHandler")
    }
    return &WebhookHandler{Store: store, Secret: secret, Publish: publish}
}

// HandleEvent handles POST /api/stripe/webhook.  The raw body is needed
// for signature verification, so the payload is read before any parsing.
// A failed signature is the single path that aborts without
// acknowledgment; every verified payload is acknowledged regardless of
// the internal outcome.
func (h *WebhookHandler) HandleEvent(c echo.Context) error {
    if h.Secret == "" {
        return c.String(http.StatusInternalServerError, "stripe webhook not configured")
    }
    body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
    if err != nil {
        return c.String(http.StatusBadRequest, "failed to read body")
    }
    event, err := payment.ConstructEvent(body, c.Request().Header.Get("Stripe-Signature"), h.Secret)
    if err != nil {
        return c.String(http.StatusBadRequest, "Webhook Error: "+err.Error())
    }

    ctx := c.Request().Context()
    switch event.Type {
    case payment.EventCheckoutSessionCompleted:
        h.applyCompleted(ctx, event.Data.Object)
    case payment.EventCheckoutSessionExpired:
        h.applyExpired(ctx, event.Data.Object)
    default:
        // Unhandled event types are acknowledged without action.
    }

    return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// applyCompleted transitions the correlated reservation to paid and, only
// when this delivery actually performed the transition, publishes the
// notification event.  Duplicate deliveries find the reservation already
// terminal and do nothing, which is what caps notifications at one per
// reservation.
func (h *WebhookHandler) applyCompleted(ctx context.Context, session payment.EventSession) {
    rid := session.ReservationID()
    if rid == "" {
        log.Printf("webhook: completed session %s without reservation metadata", session.ID)
        return
    }
    transitioned, err := h.Store.MarkPaid(ctx, rid, session.ID, session.PaymentIntent)
    if err != nil {
        log.Printf("webhook: mark paid for reservation %s failed: %v", rid, err)
        return
    }
    if !transitioned {
        return // already terminal, duplicate or late delivery
    }
    if h.Publish == nil {
        return
    }
    res, err := h.Store.GetByID(ctx, rid)
    if err != nil {
        log.Printf("webhook: load reservation %s for notification failed: %v", rid, err)
        return
    }
    if err := h.Publish(ctx, paidEvent(res)); err != nil {
        // Best effort only; the acknowledgment is unaffected.
        log.Printf("webhook: publish paid event for reservation %s failed: %v", rid, err)
    }
}

// applyExpired transitions the correlated reservation to expired.  No
// notification is sent for expirations, and a reservation that was paid
// first stays paid.
func (h *WebhookHandler) applyExpired(ctx context.Context, session payment.EventSession) {
    rid := session.ReservationID()
    if rid == "" {
        return
    }
    if _, err := h.Store.MarkExpired(ctx, rid, session.ID); err != nil {
        log.Printf("webhook: mark expired for reservation %s failed: %v", rid, err)
    }
}

// paidEvent flattens a reservation into the wire event the notification
// consumer expects.
func paidEvent(res *model.Reservation) queue.ReservationPaidEvent {
    items := make([]queue.PaidItem, len(res.Items))
    for i, it := range res.Items {
        items[i] = queue.PaidItem{PackageName: it.PackageName, Quantity: it.Quantity}
    }
    return queue.ReservationPaidEvent{
        ReservationID:   res.ID,
        CustomerName:    res.CustomerName,
        Email:           res.Email,
        Phone:           res.Phone,
        Address:         res.Address,
        PickupDate:      res.PickupDate,
        PickupTime:      res.PickupTime,
        SpecialRequests: res.SpecialRequests,
        Items:           items,
        TotalCents:      res.TotalCents,
        PaidAt:          res.UpdatedAt.UTC().Format(time.RFC3339),
    }
}
