package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "time"
    "unicode/utf8"

    "github.com/labstack/echo/v4"

    "github.com/foodsave/reservation-api/internal/catalog"
    "github.com/foodsave/reservation-api/internal/model"
    "github.com/foodsave/reservation-api/internal/payment"
    "github.com/foodsave/reservation-api/internal/repository"
)

// Quantity bounds for a single line item.
const (
    minQuantity = 1
    maxQuantity = 20
)

// maxPickupDays is how far ahead of today a pickup may be booked.
const maxPickupDays = 5

// maxSpecialRequests caps the free-form note at 500 characters; longer
// input is truncated, not rejected.
const maxSpecialRequests = 500

// ReservationStore is the persistence contract the checkout and webhook
// handlers rely on.  *repository.ReservationRepo satisfies it; tests use
// in-memory fakes.
type ReservationStore interface {
    Create(ctx context.Context, res *model.Reservation) error
    GetByID(ctx context.Context, id string) (*model.Reservation, error)
    GetBySessionID(ctx context.Context, sessionID string) (*model.Reservation, error)
    AttachSession(ctx context.Context, id, sessionID string) error
    BackfillSession(ctx context.Context, id, sessionID string) error
    MarkPaid(ctx context.Context, id, sessionID, paymentIntentID string) (bool, error)
    MarkExpired(ctx context.Context, id, sessionID string) (bool, error)
}

// CheckoutGateway is the slice of the payment client used here.
type CheckoutGateway interface {
    Configured() bool
    CreateCheckoutSession(ctx context.Context, p payment.CreateSessionParams) (*payment.CheckoutSession, error)
    RetrieveCheckoutSession(ctx context.Context, id string) (*payment.CheckoutSession, error)
}

// CheckoutHandler validates purchase requests, prices them against the
// injected catalog, persists pending reservations and opens checkout
// sessions.  It also serves the session reconciliation endpoint clients
// poll after returning from the payment page.
type CheckoutHandler struct {
    Store   ReservationStore
    Gateway CheckoutGateway
    Catalog catalog.Catalog
    BaseURL string           // public base URL for redirect targets
    Now     func() time.Time // injectable clock for the pickup-date window
}

// NewCheckoutHandler constructs a CheckoutHandler with a real clock.
func NewCheckoutHandler(store ReservationStore, gateway CheckoutGateway, cat catalog.Catalog, baseURL string) *CheckoutHandler {
    if store == nil || gateway == nil {
        panic("nil dependency passed to NewCheckoutHandler")
    }
    return &CheckoutHandler{
        Store:   store,
        Gateway: gateway,
        Catalog: cat,
        BaseURL: baseURL,
        Now:     time.Now,
    }
}

// checkoutRequest is the JSON body of POST /api/checkout.  Quantity is a
// strict integer: fractional values fail binding and are rejected.
type checkoutRequest struct {
    Items []struct {
        PackageID string `json:"packageId"`
        Quantity  int    `json:"quantity"`
    } `json:"items"`
    Address         string `json:"address"`
    PickupTime      string `json:"pickupTime"`
    PickupDate      string `json:"pickupDate"`
    Name            string `json:"name"`
    Phone           string `json:"phone"`
    Email           string `json:"email"`
    SpecialRequests string `json:"specialRequests"`
}

// CreateCheckout handles POST /api/checkout.  All validation happens
// before any persistence; only a fully valid request creates a pending
// reservation and a checkout session.  On success the provider's hosted
// redirect URL is returned.
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
    if !h.Gateway.Configured() {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment gateway is not configured"})
    }

    var body checkoutRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.Items) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "select at least one package"})
    }
    if body.Name == "" || body.Phone == "" || body.Address == "" || body.PickupTime == "" || body.PickupDate == "" || body.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "all contact fields are required"})
    }

    // The pickup window is compared at day granularity in server-local
    // time: today is the earliest slot, today+5 the latest.
    selected, err := time.ParseInLocation("2006-01-02", body.PickupDate, time.Local)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pickup date"})
    }
    now := h.Now()
    today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
    if selected.Before(today) || selected.After(today.AddDate(0, 0, maxPickupDays)) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup date must be between today and 5 days ahead"})
    }

    // Resolve every item against the catalog, snapshotting name and
    // price.  The total is computed server-side only.
    items := make([]model.LineItem, 0, len(body.Items))
    var totalCents int64
    for _, it := range body.Items {
        entry, ok := h.Catalog.Lookup(it.PackageID)
        if !ok {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown package"})
        }
        if it.Quantity < minQuantity || it.Quantity > maxQuantity {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quantity"})
        }
        items = append(items, model.LineItem{
            PackageID:      entry.ID,
            PackageName:    entry.Name,
            UnitPriceCents: entry.PriceCents,
            Quantity:       it.Quantity,
        })
        totalCents += entry.PriceCents * int64(it.Quantity)
    }

    // Truncate on a rune boundary: Slovak notes carry diacritics and a
    // byte-level cut could store invalid UTF-8.
    special := body.SpecialRequests
    if utf8.RuneCountInString(special) > maxSpecialRequests {
        special = string([]rune(special)[:maxSpecialRequests])
    }

    res := &model.Reservation{
        Items:           items,
        TotalCents:      totalCents,
        Address:         body.Address,
        PickupDate:      body.PickupDate,
        PickupTime:      body.PickupTime,
        CustomerName:    body.Name,
        Phone:           body.Phone,
        Email:           body.Email,
        SpecialRequests: special,
        Status:          model.StatusPending,
    }
    ctx := c.Request().Context()
    if err := h.Store.Create(ctx, res); err != nil {
        log.Printf("checkout: create reservation failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save reservation"})
    }

    sessionItems := make([]payment.SessionLineItem, len(items))
    for i, it := range items {
        sessionItems[i] = payment.SessionLineItem{
            Name:            it.PackageName,
            UnitAmountCents: it.UnitPriceCents,
            Quantity:        it.Quantity,
        }
    }
    session, err := h.Gateway.CreateCheckoutSession(ctx, payment.CreateSessionParams{
        ReservationID: res.ID,
        Items:         sessionItems,
        SuccessURL:    h.BaseURL + "/thank-you.html?session_id={CHECKOUT_SESSION_ID}",
        CancelURL:     h.BaseURL + "/payment-failed.html",
    })
    if err != nil {
        log.Printf("checkout: create session for reservation %s failed: %v", res.ID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start payment"})
    }

    // Persisting the session link is best effort: the session carries the
    // reservation ID in its metadata, so a lost link is healed later by
    // the reconciliation endpoint.
    if err := h.Store.AttachSession(ctx, res.ID, session.ID); err != nil {
        log.Printf("checkout: attach session %s to reservation %s failed: %v", session.ID, res.ID, err)
    }

    return c.JSON(http.StatusOK, echo.Map{"url": session.URL})
}

// reservationSummary is the public view of a reservation returned by the
// session endpoint.  Contact details beyond the name stay private to the
// admin surface.
type reservationSummary struct {
    Items        []model.LineItem `json:"items"`
    TotalCents   int64            `json:"totalCents"`
    Status       string           `json:"status"`
    CustomerName string           `json:"customerName"`
    PickupDate   string           `json:"pickupDate"`
    PickupTime   string           `json:"pickupTime"`
}

// ResolveSession handles GET /api/checkout/session/:id.  Clients call it
// right after returning from the payment page, with no ordering guarantee
// against webhook delivery, so a pending status is a normal answer.  When
// no local reservation carries the session ID yet, the provider is asked
// directly and the link is backfilled from the session metadata.  Status
// is never mutated here.
func (h *CheckoutHandler) ResolveSession(c echo.Context) error {
    sessionID := c.Param("id")
    if sessionID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session id"})
    }
    ctx := c.Request().Context()

    res, err := h.Store.GetBySessionID(ctx, sessionID)
    if err != nil && !errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if res == nil {
        // Fall back to the provider.  Any retrieval failure collapses to
        // not-found: the client polls, it must never see a gateway 5xx.
        session, gerr := h.Gateway.RetrieveCheckoutSession(ctx, sessionID)
        if gerr != nil {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        rid := session.Metadata["reservationId"]
        if rid == "" {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        res, err = h.Store.GetByID(ctx, rid)
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        if res.StripeSessionID == "" {
            if err := h.Store.BackfillSession(ctx, res.ID, session.ID); err != nil {
                log.Printf("reconcile: backfill session %s on reservation %s failed: %v", session.ID, res.ID, err)
            }
        }
    }

    return c.JSON(http.StatusOK, reservationSummary{
        Items:        res.Items,
        TotalCents:   res.TotalCents,
        Status:       res.Status,
        CustomerName: res.CustomerName,
        PickupDate:   res.PickupDate,
        PickupTime:   res.PickupTime,
    })
}
