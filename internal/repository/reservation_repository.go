package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/google/uuid"

    "github.com/foodsave/reservation-api/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their line
// items.  A reservation groups the packages ordered in one checkout.  Line
// items are stored in the reservation_items table in insertion order.  All
// timestamp fields are assumed to be stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to coordinate
// transactions across repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// Create inserts a reservation together with its line items in a single
// transaction.  When the reservation carries no ID a fresh UUID is
// assigned.  Timestamps are populated from the inserted row so the caller
// sees exactly what was stored.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    if res.ID == "" {
        res.ID = uuid.NewString()
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const q = `INSERT INTO reservations
        (id, total_cents, address, pickup_date, pickup_time, customer_name, phone, email, special_requests, status, stripe_session_id, stripe_payment_intent_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    if _, err := tx.ExecContext(ctx, q,
        res.ID, res.TotalCents, res.Address, res.PickupDate, res.PickupTime,
        res.CustomerName, res.Phone, res.Email, res.SpecialRequests,
        res.Status, res.StripeSessionID, res.StripePaymentIntentID,
    ); err != nil {
        return err
    }

    if len(res.Items) > 0 {
        // Bulk insert all line items in one statement, preserving order.
        query := `INSERT INTO reservation_items (reservation_id, package_id, package_name, unit_price_cents, quantity) VALUES `
        args := make([]interface{}, 0, len(res.Items)*5)
        for i, it := range res.Items {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, ?)"
            args = append(args, res.ID, it.PackageID, it.PackageName, it.UnitPriceCents, it.Quantity)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }

    // Query back row timestamps so the returned struct matches the database.
    const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
    if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByID returns a reservation with its line items.  ErrNotFound is
// returned when no reservation with the given ID exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
    return r.getOne(ctx, `WHERE id = ?`, id)
}

// GetBySessionID returns the reservation linked to the given checkout
// session.  ErrNotFound is returned when no reservation carries the
// session ID, which is expected while the checkout link has not been
// persisted yet.
func (r *ReservationRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Reservation, error) {
    return r.getOne(ctx, `WHERE stripe_session_id = ?`, sessionID)
}

func (r *ReservationRepo) getOne(ctx context.Context, where string, arg interface{}) (*model.Reservation, error) {
    q := `SELECT id, total_cents, address, pickup_date, pickup_time, customer_name, phone, email,
                 special_requests, status, stripe_session_id, stripe_payment_intent_id, created_at, updated_at
          FROM reservations ` + where
    var res model.Reservation
    var special, sessionID, paymentID sql.NullString
    err := r.db.QueryRowContext(ctx, q, arg).Scan(
        &res.ID, &res.TotalCents, &res.Address, &res.PickupDate, &res.PickupTime,
        &res.CustomerName, &res.Phone, &res.Email,
        &special, &res.Status, &sessionID, &paymentID, &res.CreatedAt, &res.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    res.SpecialRequests = special.String
    res.StripeSessionID = sessionID.String
    res.StripePaymentIntentID = paymentID.String
    items, err := r.loadItems(ctx, []string{res.ID})
    if err != nil {
        return nil, err
    }
    res.Items = items[res.ID]
    if res.Items == nil {
        res.Items = []model.LineItem{}
    }
    return &res, nil
}

// AttachSession stores the checkout session ID on a freshly created
// reservation.  The call is unconditional; it is used right after session
// creation when no concurrent writer exists yet.
func (r *ReservationRepo) AttachSession(ctx context.Context, id, sessionID string) error {
    const q = `UPDATE reservations SET stripe_session_id = ? WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q, sessionID, id)
    return err
}

// BackfillSession records the session ID only when none is stored yet.  It
// heals reservations whose session link failed to persist during checkout
// and never touches any other field, in particular not the status.
func (r *ReservationRepo) BackfillSession(ctx context.Context, id, sessionID string) error {
    const q = `UPDATE reservations SET stripe_session_id = ?
               WHERE id = ? AND (stripe_session_id IS NULL OR stripe_session_id = '')`
    _, err := r.db.ExecContext(ctx, q, sessionID, id)
    return err
}

// MarkPaid transitions a reservation from pending to paid, recording the
// session and payment identifiers.  The update is conditional on the
// current status still being pending, which makes concurrent or duplicate
// webhook deliveries safe: exactly one delivery observes transitioned ==
// true, every later one is a no-op.
func (r *ReservationRepo) MarkPaid(ctx context.Context, id, sessionID, paymentIntentID string) (transitioned bool, err error) {
    const q = `UPDATE reservations
               SET status = ?, stripe_session_id = ?, stripe_payment_intent_id = ?
               WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q, model.StatusPaid, sessionID, paymentIntentID, id, model.StatusPending)
    if err != nil {
        return false, err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// MarkExpired transitions a reservation from pending to expired.  Like
// MarkPaid the update is conditional on the stored status, so an expired
// event arriving after a paid transition leaves the reservation untouched.
func (r *ReservationRepo) MarkExpired(ctx context.Context, id, sessionID string) (transitioned bool, err error) {
    const q = `UPDATE reservations
               SET status = ?, stripe_session_id = ?
               WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q, model.StatusExpired, sessionID, id, model.StatusPending)
    if err != nil {
        return false, err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return false, err
    }
    return n == 1, nil
}

// List returns reservations ordered by creation time descending (newest
// first), optionally filtered by status.  Line items are populated with a
// single bulk query.  When no reservations match, an empty slice is
// returned.
func (r *ReservationRepo) List(ctx context.Context, status string, limit int) ([]model.Reservation, error) {
    q := `SELECT id, total_cents, address, pickup_date, pickup_time, customer_name, phone, email,
                 special_requests, status, stripe_session_id, stripe_payment_intent_id, created_at, updated_at
          FROM reservations`
    args := make([]interface{}, 0, 2)
    if status != "" {
        q += ` WHERE status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY created_at DESC LIMIT ?`
    args = append(args, limit)

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    reservations := make([]model.Reservation, 0)
    index := make(map[string]int)
    ids := make([]string, 0)
    for rows.Next() {
        var res model.Reservation
        var special, sessionID, paymentID sql.NullString
        if err := rows.Scan(
            &res.ID, &res.TotalCents, &res.Address, &res.PickupDate, &res.PickupTime,
            &res.CustomerName, &res.Phone, &res.Email,
            &special, &res.Status, &sessionID, &paymentID, &res.CreatedAt, &res.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        res.SpecialRequests = special.String
        res.StripeSessionID = sessionID.String
        res.StripePaymentIntentID = paymentID.String
        res.Items = []model.LineItem{}
        index[res.ID] = len(reservations)
        ids = append(ids, res.ID)
        reservations = append(reservations, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(reservations) == 0 {
        return reservations, nil
    }
    items, err := r.loadItems(ctx, ids)
    if err != nil {
        return nil, err
    }
    for id, list := range items {
        if idx, ok := index[id]; ok {
            reservations[idx].Items = list
        }
    }
    return reservations, nil
}

// loadItems fetches line items for all given reservation IDs in one query
// and groups them by reservation.  Items come back in insertion order.
func (r *ReservationRepo) loadItems(ctx context.Context, ids []string) (map[string][]model.LineItem, error) {
    if len(ids) == 0 {
        return map[string][]model.LineItem{}, nil
    }
    placeholders := make([]string, len(ids))
    args := make([]interface{}, len(ids))
    for i, id := range ids {
        placeholders[i] = "?"
        args[i] = id
    }
    q := `SELECT reservation_id, package_id, package_name, unit_price_cents, quantity
          FROM reservation_items
          WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make(map[string][]model.LineItem, len(ids))
    for rows.Next() {
        var rid string
        var it model.LineItem
        if err := rows.Scan(&rid, &it.PackageID, &it.PackageName, &it.UnitPriceCents, &it.Quantity); err != nil {
            return nil, err
        }
        out[rid] = append(out[rid], it)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
