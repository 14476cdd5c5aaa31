// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationPaidQueue is the durable queue carrying paid-reservation
// events from the webhook processor to the notification consumer.
const ReservationPaidQueue = "reservation.paid"

// PaidItem is one line of a paid reservation as carried on the wire.
type PaidItem struct {
    PackageName string `json:"package_name"`
    Quantity    int    `json:"quantity"`
}

// ReservationPaidEvent is published exactly once per pending→paid
// transition.  It contains everything downstream consumers need to build
// the customer confirmation and the operator notification without
// querying the primary database.
type ReservationPaidEvent struct {
    ReservationID   string     `json:"reservation_id"`
    CustomerName    string     `json:"customer_name"`
    Email           string     `json:"email"`
    Phone           string     `json:"phone"`
    Address         string     `json:"address"`
    PickupDate      string     `json:"pickup_date"`
    PickupTime      string     `json:"pickup_time"`
    SpecialRequests string     `json:"special_requests,omitempty"`
    Items           []PaidItem `json:"items"`
    TotalCents      int64      `json:"total_cents"`
    PaidAt          string     `json:"paid_at"`
}
