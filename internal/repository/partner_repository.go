package repository

import (
    "context"
    "database/sql"

    "github.com/google/uuid"

    "github.com/foodsave/reservation-api/internal/model"
)

// PartnerRepo stores partner signups.  Signups are append-only from the
// public API; the operator reads them through the admin surface.
type PartnerRepo struct {
    db *sql.DB
}

// NewPartnerRepo returns a new PartnerRepo bound to the given database.
func NewPartnerRepo(db *sql.DB) *PartnerRepo { return &PartnerRepo{db: db} }

// Create inserts a partner signup, assigning a UUID when none is set, and
// populates the creation timestamp from the stored row.
func (r *PartnerRepo) Create(ctx context.Context, p *model.PartnerSignup) error {
    if p.ID == "" {
        p.ID = uuid.NewString()
    }
    const q = `INSERT INTO partner_signups (id, company_name, business_type, contact_name, email, city, phone)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    if _, err := r.db.ExecContext(ctx, q,
        p.ID, p.CompanyName, p.BusinessType, p.ContactName, p.Email, p.City, p.Phone,
    ); err != nil {
        return err
    }
    const sel = `SELECT created_at FROM partner_signups WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.CreatedAt)
}

// List returns partner signups ordered by creation time descending.  When
// none exist, an empty slice is returned.
func (r *PartnerRepo) List(ctx context.Context, limit int) ([]model.PartnerSignup, error) {
    const q = `SELECT id, company_name, business_type, contact_name, email, city, phone, created_at
               FROM partner_signups ORDER BY created_at DESC LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.PartnerSignup, 0)
    for rows.Next() {
        var p model.PartnerSignup
        if err := rows.Scan(&p.ID, &p.CompanyName, &p.BusinessType, &p.ContactName, &p.Email, &p.City, &p.Phone, &p.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
