// Package notify sends order notifications through the Resend HTTP API.
// Delivery is best effort by contract: callers log failures and move on,
// there is no retry machinery.
package notify

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/foodsave/reservation-api/internal/queue"
)

const defaultAPIBase = "https://api.resend.com"

// ErrNotConfigured is returned when the mailer is missing the API key or
// sender address it needs for the requested mail.
var ErrNotConfigured = errors.New("mailer not configured")

// Mailer builds and sends the customer confirmation and operator
// notification for paid reservations.  A partially configured mailer
// skips the mails it cannot send and reports ErrNotConfigured.
type Mailer struct {
    apiKey     string
    from       string
    adminEmail string
    baseURL    string // public site URL linked from the customer mail
    logoURL    string // optional logo, falls back to a text header
    apiBase    string
    http       *http.Client
}

// NewMailer constructs a Mailer.  Empty apiKey or from disable sending.
func NewMailer(apiKey, from, adminEmail, baseURL, logoURL string) *Mailer {
    return &Mailer{
        apiKey:     apiKey,
        from:       from,
        adminEmail: adminEmail,
        baseURL:    baseURL,
        logoURL:    logoURL,
        apiBase:    defaultAPIBase,
        http:       &http.Client{Timeout: 15 * time.Second},
    }
}

// NewMailerWithBase is NewMailer with an overridable API base URL for tests.
func NewMailerWithBase(apiKey, from, adminEmail, baseURL, logoURL, apiBase string) *Mailer {
    m := NewMailer(apiKey, from, adminEmail, baseURL, logoURL)
    m.apiBase = strings.TrimRight(apiBase, "/")
    return m
}

// SendCustomerConfirmation mails the order summary to the customer.  It
// is a no-op error when the mailer lacks credentials or the reservation
// carries no email address.
func (m *Mailer) SendCustomerConfirmation(ctx context.Context, ev queue.ReservationPaidEvent) error {
    if m.apiKey == "" || m.from == "" {
        return ErrNotConfigured
    }
    if ev.Email == "" {
        return nil // nothing to send, not an error
    }
    header := "<h2>FoodSave</h2>"
    if m.logoURL != "" {
        header = fmt.Sprintf(`<img src=%q alt="FoodSave" style="height:44px;" />`, m.logoURL)
    }
    var rows strings.Builder
    for _, it := range ev.Items {
        fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d×</td></tr>", it.PackageName, it.Quantity)
    }
    html := fmt.Sprintf(`
        %s
        <h2>Dakujeme za objednavku!</h2>
        <p>Vdaka tebe jedlo neskonci v kosi. Spolu setrime planetu.</p>
        <table>%s
            <tr><td>Datum</td><td>%s</td></tr>
            <tr><td>Cas</td><td>%s</td></tr>
            <tr><td>Spolu</td><td>%s</td></tr>
        </table>
        <p><a href=%q>Spat na FoodSave</a></p>`,
        header, rows.String(), ev.PickupDate, ev.PickupTime, FormatEuro(ev.TotalCents), m.baseURL+"/")
    return m.send(ctx, ev.Email, "FoodSave - potvrdenie objednavky", html)
}

// SendOperatorNotification mails the full order detail, including special
// requests, to the operator address.
func (m *Mailer) SendOperatorNotification(ctx context.Context, ev queue.ReservationPaidEvent) error {
    if m.apiKey == "" || m.from == "" || m.adminEmail == "" {
        return ErrNotConfigured
    }
    items := FormatItemsList(ev.Items)
    if items == "" {
        items = "-"
    }
    special := ""
    if ev.SpecialRequests != "" {
        special = fmt.Sprintf("<p><strong>Specialne poziadavky:</strong> %s</p>", ev.SpecialRequests)
    }
    html := fmt.Sprintf(`
        <h2>Nova objednavka</h2>
        <p><strong>Zakaznik:</strong> %s (%s)</p>
        <p><strong>Telefon:</strong> %s</p>
        <p><strong>Adresa:</strong> %s</p>
        <p><strong>Termin:</strong> %s %s</p>
        <p><strong>Baliky:</strong> %s</p>
        <p><strong>Spolu:</strong> %s</p>
        %s`,
        ev.CustomerName, ev.Email, ev.Phone, ev.Address,
        ev.PickupDate, ev.PickupTime, items, FormatEuro(ev.TotalCents), special)
    return m.send(ctx, m.adminEmail, "FoodSave - nova objednavka", html)
}

// send posts one mail to the Resend API.
func (m *Mailer) send(ctx context.Context, to, subject, html string) error {
    payload, err := json.Marshal(map[string]interface{}{
        "from":    m.from,
        "to":      []string{to},
        "subject": subject,
        "html":    html,
    })
    if err != nil {
        return err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiBase+"/emails", bytes.NewReader(payload))
    if err != nil {
        return err
    }
    req.Header.Set("Authorization", "Bearer "+m.apiKey)
    req.Header.Set("Content-Type", "application/json")
    resp, err := m.http.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
        return fmt.Errorf("resend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
    }
    return nil
}

// FormatEuro renders cents as a comma-decimal euro amount, e.g. "28,00 €".
func FormatEuro(cents int64) string {
    s := fmt.Sprintf("%.2f", float64(cents)/100)
    return strings.Replace(s, ".", ",", 1) + " €"
}

// FormatItemsList renders line items as "Name × qty" joined by commas.
func FormatItemsList(items []queue.PaidItem) string {
    parts := make([]string, 0, len(items))
    for _, it := range items {
        parts = append(parts, fmt.Sprintf("%s × %d", it.PackageName, it.Quantity))
    }
    return strings.Join(parts, ", ")
}
