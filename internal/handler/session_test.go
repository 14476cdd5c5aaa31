package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/foodsave/reservation-api/internal/model"
	"github.com/foodsave/reservation-api/internal/payment"
)

func resolve(t *testing.T, h *CheckoutHandler, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/checkout/session/:id")
	c.SetParamNames("id")
	c.SetParamValues(sessionID)
	require.NoError(t, h.ResolveSession(c))
	return rec
}

func TestResolveSessionLocalHit(t *testing.T) {
	store := newFakeStore()
	res := pendingReservation(store)
	require.NoError(t, store.AttachSession(context.Background(), res.ID, "cs_local"))

	h := newCheckoutHandler(store, newFakeGateway())
	rec := resolve(t, h, "cs_local")
	require.Equal(t, http.StatusOK, rec.Code)

	var got reservationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, model.StatusPending, got.Status, "pending is a normal answer before the webhook lands")
	require.Equal(t, "Jana", got.CustomerName)
	require.Equal(t, int64(2000), got.TotalCents)
	require.Len(t, got.Items, 1)
}

func TestResolveSessionBackfillsMissingLink(t *testing.T) {
	store := newFakeStore()
	res := pendingReservation(store) // no session ID persisted
	gw := newFakeGateway()
	gw.retrieved["cs_lost"] = &payment.CheckoutSession{
		ID:       "cs_lost",
		Metadata: map[string]string{"reservationId": res.ID},
	}

	h := newCheckoutHandler(store, gw)
	rec := resolve(t, h, "cs_lost")
	require.Equal(t, http.StatusOK, rec.Code)

	// The link was healed, the status untouched.
	healed, err := store.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	require.Equal(t, "cs_lost", healed.StripeSessionID)
	require.Equal(t, model.StatusPending, healed.Status)
	require.Equal(t, []string{res.ID}, store.backfilled)
}

func TestResolveSessionProviderFailureIsNotFound(t *testing.T) {
	h := newCheckoutHandler(newFakeStore(), newFakeGateway())
	rec := resolve(t, h, "cs_unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveSessionWithoutMetadataIsNotFound(t *testing.T) {
	store := newFakeStore()
	gw := newFakeGateway()
	gw.retrieved["cs_bare"] = &payment.CheckoutSession{ID: "cs_bare", Metadata: map[string]string{}}
	h := newCheckoutHandler(store, gw)
	rec := resolve(t, h, "cs_bare")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResolveSessionDatabaseErrorOnFallbackIs500(t *testing.T) {
	store := newFakeStore()
	res := pendingReservation(store)
	store.getErr = errors.New("connection reset")
	gw := newFakeGateway()
	gw.retrieved["cs_db"] = &payment.CheckoutSession{
		ID:       "cs_db",
		Metadata: map[string]string{"reservationId": res.ID},
	}

	h := newCheckoutHandler(store, gw)
	rec := resolve(t, h, "cs_db")
	// A failing database is not a missing reservation.
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResolveSessionUnknownReservationIsNotFound(t *testing.T) {
	store := newFakeStore()
	gw := newFakeGateway()
	gw.retrieved["cs_orphan"] = &payment.CheckoutSession{
		ID:       "cs_orphan",
		Metadata: map[string]string{"reservationId": "deleted-id"},
	}
	h := newCheckoutHandler(store, gw)
	rec := resolve(t, h, "cs_orphan")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
