package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/foodsave/reservation-api/internal/model"
)

// PartnerStore persists partner signups.
type PartnerStore interface {
    Create(ctx context.Context, p *model.PartnerSignup) error
    List(ctx context.Context, limit int) ([]model.PartnerSignup, error)
}

// PartnerNotifier tells the operator about a new signup.  notify.Mailer
// satisfies it; nil disables the notification.
type PartnerNotifier interface {
    SendPartnerSignup(ctx context.Context, p model.PartnerSignup) error
}

// PartnerHandler serves the public partner signup form.  Signups never
// touch the payment core.
type PartnerHandler struct {
    Store    PartnerStore
    Notifier PartnerNotifier
}

// NewPartnerHandler constructs a PartnerHandler.
func NewPartnerHandler(store PartnerStore, notifier PartnerNotifier) *PartnerHandler {
    if store == nil {
        panic("nil store passed to NewPartnerHandler")
    }
    return &PartnerHandler{Store: store, Notifier: notifier}
}

// CreateSignup handles POST /api/partners.  All fields are required.  The
// operator notification is a detached best-effort side effect; its
// failure never surfaces to the caller.
func (h *PartnerHandler) CreateSignup(c echo.Context) error {
    var body struct {
        CompanyName  string `json:"companyName"`
        BusinessType string `json:"businessType"`
        ContactName  string `json:"contactName"`
        Email        string `json:"email"`
        City         string `json:"city"`
        Phone        string `json:"phone"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.CompanyName == "" || body.BusinessType == "" || body.ContactName == "" || body.Email == "" || body.City == "" || body.Phone == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
    }

    signup := &model.PartnerSignup{
        CompanyName:  body.CompanyName,
        BusinessType: body.BusinessType,
        ContactName:  body.ContactName,
        Email:        body.Email,
        City:         body.City,
        Phone:        body.Phone,
    }
    if err := h.Store.Create(c.Request().Context(), signup); err != nil {
        log.Printf("partners: create signup failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save signup"})
    }

    if h.Notifier != nil {
        go func(p model.PartnerSignup) {
            ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
            defer cancel()
            if err := h.Notifier.SendPartnerSignup(ctx, p); err != nil {
                log.Printf("partners: signup notification failed: %v", err)
            }
        }(*signup)
    }

    return c.JSON(http.StatusOK, echo.Map{"ok": true, "id": signup.ID})
}
