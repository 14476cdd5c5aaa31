package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/foodsave/reservation-api/internal/handler"
)

// RegisterRoutes registers routes that carry no middleware on the
// provided Echo instance.  Currently it exposes only a health check used
// by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterCheckout registers the payment flow: checkout creation, the
// provider webhook and the session reconciliation endpoint.  The rate
// limiter guards the write endpoint only: webhook deliveries come from
// the provider and must never be throttled, and the session endpoint is
// polled by clients waiting for their payment outcome.
func RegisterCheckout(e *echo.Echo, ch *handler.CheckoutHandler, wh *handler.WebhookHandler, rate echo.MiddlewareFunc) {
    e.POST("/api/checkout", ch.CreateCheckout, rate)
    e.GET("/api/checkout/session/:id", ch.ResolveSession)
    e.POST("/api/stripe/webhook", wh.HandleEvent)
}

// RegisterPartners registers the public partner signup endpoint.
func RegisterPartners(e *echo.Echo, p *handler.PartnerHandler, rate echo.MiddlewareFunc) {
    e.POST("/api/partners", p.CreateSignup, rate)
}

// RegisterAdmin registers the operator audit endpoints behind the static
// admin token.  Listings sit behind the short-TTL response cache; the
// CSV export always reads fresh data.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, adminToken, cache echo.MiddlewareFunc) {
    g := e.Group("/api/admin", adminToken)
    g.GET("/reservations", a.ListReservations, cache)
    g.GET("/partners", a.ListPartners, cache)
    g.GET("/reservations.csv", a.ExportReservationsCSV)
}
