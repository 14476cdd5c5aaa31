package model

import "time"

// Reservation statuses.  A reservation is created as pending and moves to
// exactly one terminal state; once terminal it never changes again.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusExpired = "expired"
)

// LineItem is one ordered package inside a reservation.  Name and unit
// price are snapshots of the catalog at order time so historical orders
// stay correct when the catalog changes.
//
// Fields:
//  PackageID      – catalog identifier of the package.
//  PackageName    – display name at order time.
//  UnitPriceCents – unit price in cents at order time.
//  Quantity       – ordered quantity, 1..20.
type LineItem struct {
	PackageID      string `json:"packageId"`      // reservation_items.package_id
	PackageName    string `json:"packageName"`    // reservation_items.package_name
	UnitPriceCents int64  `json:"unitPriceCents"` // reservation_items.unit_price_cents
	Quantity       int    `json:"quantity"`       // reservation_items.quantity
}

// Reservation records a customer's order for one or more surplus-food
// packages, tracked from creation through the payment outcome.
//
// Fields:
//  ID                    – primary key, UUID string.
//  Items                 – ordered line items with snapshotted prices.
//  TotalCents            – server-computed sum of unit price × quantity.
//  Address               – pickup address supplied by the customer.
//  PickupDate            – calendar date in YYYY-MM-DD form.
//  PickupTime            – free-form pickup time slot.
//  CustomerName          – customer's name.
//  Phone                 – customer's phone number.
//  Email                 – customer's email, confirmation target.
//  SpecialRequests       – optional note, truncated to 500 characters.
//  Status                – pending, paid or expired.
//  StripeSessionID       – checkout session linked to this reservation.
//  StripePaymentIntentID – provider payment identifier, set on paid.
//  CreatedAt / UpdatedAt – row timestamps.
type Reservation struct {
	ID                    string     `json:"id"`
	Items                 []LineItem `json:"items"`
	TotalCents            int64      `json:"totalCents"`
	Address               string     `json:"address"`
	PickupDate            string     `json:"pickupDate"`
	PickupTime            string     `json:"pickupTime"`
	CustomerName          string     `json:"customerName"`
	Phone                 string     `json:"phone"`
	Email                 string     `json:"email"`
	SpecialRequests       string     `json:"specialRequests,omitempty"`
	Status                string     `json:"status"`
	StripeSessionID       string     `json:"stripeSessionId,omitempty"`
	StripePaymentIntentID string     `json:"stripePaymentIntentId,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Terminal reports whether the reservation has reached a final status.
// Webhook transitions only apply while the reservation is still pending.
func (r *Reservation) Terminal() bool {
	return r.Status == StatusPaid || r.Status == StatusExpired
}
