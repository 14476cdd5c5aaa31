package handler

import (
    "context"
    "encoding/csv"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/foodsave/reservation-api/internal/model"
)

// ReservationLister is the read-only slice of the reservation store used
// by the admin surface.
type ReservationLister interface {
    List(ctx context.Context, status string, limit int) ([]model.Reservation, error)
}

// AdminHandler serves the operator audit endpoints.  Authentication is
// handled by the admin-token middleware; the handlers only read data.
type AdminHandler struct {
    Reservations ReservationLister
    Partners     PartnerStore
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(reservations ReservationLister, partners PartnerStore) *AdminHandler {
    if reservations == nil || partners == nil {
        panic("nil store passed to NewAdminHandler")
    }
    return &AdminHandler{Reservations: reservations, Partners: partners}
}

// ListReservations handles GET /api/admin/reservations.  Supports an
// optional status filter and a limit capped at 200 (default 50).
func (h *AdminHandler) ListReservations(c echo.Context) error {
    limit := parseLimit(c.QueryParam("limit"), 50, 200)
    reservations, err := h.Reservations.List(c.Request().Context(), c.QueryParam("status"), limit)
    if err != nil {
        log.Printf("admin: list reservations failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load data"})
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": reservations})
}

// ListPartners handles GET /api/admin/partners with a limit capped at
// 500 (default 100).
func (h *AdminHandler) ListPartners(c echo.Context) error {
    limit := parseLimit(c.QueryParam("limit"), 100, 500)
    partners, err := h.Partners.List(c.Request().Context(), limit)
    if err != nil {
        log.Printf("admin: list partners failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load data"})
    }
    return c.JSON(http.StatusOK, echo.Map{"partners": partners})
}

// csvHeader is the export's column order.  The packageName and quantity
// columns are line-item fields read off the aggregate and therefore stay
// empty/zero for every row; the shape is kept as-is because downstream
// spreadsheets consume it positionally.
var csvHeader = []string{
    "createdAt", "packageName", "quantity", "totalCents", "customerName",
    "phone", "address", "pickupTime", "pickupDate", "status", "stripeSessionId",
}

// ExportReservationsCSV handles GET /api/admin/reservations.csv.  Up to
// 5000 reservations are exported, newest first, optionally filtered by
// status.
func (h *AdminHandler) ExportReservationsCSV(c echo.Context) error {
    reservations, err := h.Reservations.List(c.Request().Context(), c.QueryParam("status"), 5000)
    if err != nil {
        log.Printf("admin: csv export failed: %v", err)
        return c.String(http.StatusInternalServerError, "CSV export failed.")
    }

    c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=reservations.csv`)
    c.Response().WriteHeader(http.StatusOK)

    w := csv.NewWriter(c.Response())
    if err := w.Write(csvHeader); err != nil {
        return err
    }
    for _, r := range reservations {
        row := []string{
            r.CreatedAt.UTC().Format(time.RFC3339),
            "", // packageName: not an aggregate field, see csvHeader
            "0",
            strconv.FormatInt(r.TotalCents, 10),
            r.CustomerName,
            r.Phone,
            r.Address,
            r.PickupTime,
            r.PickupDate,
            r.Status,
            r.StripeSessionID,
        }
        if err := w.Write(row); err != nil {
            return err
        }
    }
    w.Flush()
    return w.Error()
}

// parseLimit parses a limit query parameter with a default and a cap.
func parseLimit(raw string, def, max int) int {
    limit := def
    if raw != "" {
        if n, err := strconv.Atoi(raw); err == nil && n > 0 {
            limit = n
        }
    }
    if limit > max {
        limit = max
    }
    return limit
}
