package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodsave/reservation-api/internal/queue"
)

type sentMail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func mailServer(t *testing.T, sink *[]sentMail) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var m sentMail
		require.NoError(t, json.Unmarshal(body, &m))
		*sink = append(*sink, m)
		w.Write([]byte(`{"id":"email_1"}`))
	}))
}

func paidEvent() queue.ReservationPaidEvent {
	return queue.ReservationPaidEvent{
		ReservationID:   "res_1",
		CustomerName:    "Jana Novakova",
		Email:           "jana@example.com",
		Phone:           "+421900111222",
		Address:         "Hlavna 1",
		PickupDate:      "2026-03-11",
		PickupTime:      "17:00-18:00",
		SpecialRequests: "bez orechov",
		Items: []queue.PaidItem{
			{PackageName: "Cerstve pecivo", Quantity: 2},
			{PackageName: "Surprise box", Quantity: 1},
		},
		TotalCents: 2800,
	}
}

func TestSendCustomerConfirmation(t *testing.T) {
	var sent []sentMail
	srv := mailServer(t, &sent)
	defer srv.Close()

	m := NewMailerWithBase("re_test", "orders@foodsave.example", "ops@foodsave.example", "https://foodsave.example", "", srv.URL)
	require.NoError(t, m.SendCustomerConfirmation(context.Background(), paidEvent()))

	require.Len(t, sent, 1)
	require.Equal(t, []string{"jana@example.com"}, sent[0].To)
	require.Equal(t, "FoodSave - potvrdenie objednavky", sent[0].Subject)
	require.Contains(t, sent[0].HTML, "Cerstve pecivo")
	require.Contains(t, sent[0].HTML, "2026-03-11")
	require.Contains(t, sent[0].HTML, "28,00 €")
	require.NotContains(t, sent[0].HTML, "bez orechov", "special requests are operator-only")
}

func TestSendOperatorNotification(t *testing.T) {
	var sent []sentMail
	srv := mailServer(t, &sent)
	defer srv.Close()

	m := NewMailerWithBase("re_test", "orders@foodsave.example", "ops@foodsave.example", "https://foodsave.example", "", srv.URL)
	require.NoError(t, m.SendOperatorNotification(context.Background(), paidEvent()))

	require.Len(t, sent, 1)
	require.Equal(t, []string{"ops@foodsave.example"}, sent[0].To)
	require.Equal(t, "FoodSave - nova objednavka", sent[0].Subject)
	require.Contains(t, sent[0].HTML, "Cerstve pecivo × 2, Surprise box × 1")
	require.Contains(t, sent[0].HTML, "bez orechov")
	require.Contains(t, sent[0].HTML, "+421900111222")
}

func TestMailerNotConfigured(t *testing.T) {
	m := NewMailer("", "", "", "", "")
	require.ErrorIs(t, m.SendCustomerConfirmation(context.Background(), paidEvent()), ErrNotConfigured)
	require.ErrorIs(t, m.SendOperatorNotification(context.Background(), paidEvent()), ErrNotConfigured)

	// API key present but no operator address: customer mail works,
	// operator mail reports the gap.
	noAdmin := NewMailer("re_test", "orders@foodsave.example", "", "https://foodsave.example", "")
	require.ErrorIs(t, noAdmin.SendOperatorNotification(context.Background(), paidEvent()), ErrNotConfigured)
}

func TestCustomerMailSkippedWithoutAddress(t *testing.T) {
	var sent []sentMail
	srv := mailServer(t, &sent)
	defer srv.Close()
	m := NewMailerWithBase("re_test", "orders@foodsave.example", "ops@foodsave.example", "https://foodsave.example", "", srv.URL)
	ev := paidEvent()
	ev.Email = ""
	require.NoError(t, m.SendCustomerConfirmation(context.Background(), ev))
	require.Empty(t, sent)
}

func TestFormatEuro(t *testing.T) {
	require.Equal(t, "28,00 €", FormatEuro(2800))
	require.Equal(t, "0,00 €", FormatEuro(0))
	require.Equal(t, "8,50 €", FormatEuro(850))
	require.Equal(t, "0,05 €", FormatEuro(5))
}
