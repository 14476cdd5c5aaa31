package model

import "time"

// PartnerSignup records a business that wants to offer surplus packages
// through the platform.  Signups never interact with the payment flow;
// they are stored and surfaced to the operator only.
type PartnerSignup struct {
	ID           string    `json:"id"`           // partner_signups.id (UUID)
	CompanyName  string    `json:"companyName"`  // partner_signups.company_name
	BusinessType string    `json:"businessType"` // partner_signups.business_type
	ContactName  string    `json:"contactName"`  // partner_signups.contact_name
	Email        string    `json:"email"`        // partner_signups.email
	City         string    `json:"city"`         // partner_signups.city
	Phone        string    `json:"phone"`        // partner_signups.phone
	CreatedAt    time.Time `json:"createdAt"`    // partner_signups.created_at
}
