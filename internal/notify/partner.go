package notify

import (
    "context"
    "fmt"

    "github.com/foodsave/reservation-api/internal/model"
)

// SendPartnerSignup mails a new partner registration to the operator.
func (m *Mailer) SendPartnerSignup(ctx context.Context, p model.PartnerSignup) error {
    if m.apiKey == "" || m.from == "" || m.adminEmail == "" {
        return ErrNotConfigured
    }
    html := fmt.Sprintf(`
        <h2>Novy partner</h2>
        <p><strong>Firma:</strong> %s</p>
        <p><strong>Typ prevadzky:</strong> %s</p>
        <p><strong>Kontakt:</strong> %s</p>
        <p><strong>Email:</strong> %s</p>
        <p><strong>Mesto:</strong> %s</p>
        <p><strong>Telefon:</strong> %s</p>`,
        p.CompanyName, p.BusinessType, p.ContactName, p.Email, p.City, p.Phone)
    return m.send(ctx, m.adminEmail, "FoodSave - nova registracia partnera", html)
}
