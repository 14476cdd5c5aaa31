package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/foodsave/reservation-api/internal/model"
	"github.com/foodsave/reservation-api/internal/payment"
	"github.com/foodsave/reservation-api/internal/repository"
)

// fakeStore is an in-memory ReservationStore that mirrors the conditional
// transition semantics of the SQL repository.
type fakeStore struct {
	mu   sync.Mutex
	byID map[string]*model.Reservation

	createErr  error
	attachErr  error
	getErr     error
	lookups    int // GetBySessionID calls, for verification ordering tests
	backfilled []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*model.Reservation{}}
}

func (f *fakeStore) Create(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	cp := *res
	f.byID[res.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	res, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeStore) GetBySessionID(ctx context.Context, sessionID string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	for _, res := range f.byID {
		if res.StripeSessionID == sessionID {
			cp := *res
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) AttachSession(ctx context.Context, id, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return f.attachErr
	}
	if res, ok := f.byID[id]; ok {
		res.StripeSessionID = sessionID
	}
	return nil
}

func (f *fakeStore) BackfillSession(ctx context.Context, id, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if res.StripeSessionID == "" {
		res.StripeSessionID = sessionID
		f.backfilled = append(f.backfilled, id)
	}
	return nil
}

func (f *fakeStore) MarkPaid(ctx context.Context, id, sessionID, paymentIntentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok || res.Status != model.StatusPending {
		return false, nil
	}
	res.Status = model.StatusPaid
	res.StripeSessionID = sessionID
	res.StripePaymentIntentID = paymentIntentID
	return true, nil
}

func (f *fakeStore) MarkExpired(ctx context.Context, id, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok || res.Status != model.StatusPending {
		return false, nil
	}
	res.Status = model.StatusExpired
	res.StripeSessionID = sessionID
	return true, nil
}

func (f *fakeStore) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok := f.byID[id]; ok {
		return res.Status
	}
	return ""
}

func (f *fakeStore) only() *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, res := range f.byID {
		cp := *res
		return &cp
	}
	return nil
}

// fakeGateway is an in-memory CheckoutGateway.
type fakeGateway struct {
	configured bool
	createErr  error
	retrieved  map[string]*payment.CheckoutSession
	lastParams payment.CreateSessionParams
	sessionSeq int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{configured: true, retrieved: map[string]*payment.CheckoutSession{}}
}

func (g *fakeGateway) Configured() bool { return g.configured }

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, p payment.CreateSessionParams) (*payment.CheckoutSession, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.lastParams = p
	g.sessionSeq++
	return &payment.CheckoutSession{
		ID:       "cs_test_1",
		URL:      "https://checkout.example/cs_test_1",
		Metadata: map[string]string{"reservationId": p.ReservationID},
	}, nil
}

func (g *fakeGateway) RetrieveCheckoutSession(ctx context.Context, id string) (*payment.CheckoutSession, error) {
	if s, ok := g.retrieved[id]; ok {
		return s, nil
	}
	return nil, errors.New("no such session")
}
