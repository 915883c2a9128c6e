package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/dicoevent/dicoevent/internal/domain/payment"
	"github.com/dicoevent/dicoevent/internal/domain/registration"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/dicoevent/dicoevent/internal/http/handlers"
)

type fakePaymentsRepo struct {
	createFn func(ctx context.Context, p payment.Payment) (payment.Payment, error)
	getFn    func(ctx context.Context, id string) (payment.Payment, error)
	listFn   func(ctx context.Context, limit, offset int) ([]payment.Payment, int, error)
	updateFn func(ctx context.Context, p payment.Payment) (payment.Payment, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakePaymentsRepo) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}

	return p, nil
}

func (f *fakePaymentsRepo) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return payment.Payment{}, nil
}

func (f *fakePaymentsRepo) List(ctx context.Context, limit, offset int) ([]payment.Payment, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, limit, offset)
	}

	return nil, 0, nil
}

func (f *fakePaymentsRepo) Update(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, p)
	}

	return p, nil
}

func (f *fakePaymentsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

type fakeRegistrationReader struct {
	getFn func(ctx context.Context, id string) (registration.Registration, error)
}

func (f *fakeRegistrationReader) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	return f.getFn(ctx, id)
}

func TestGetPaymentById_AnyAuthenticatedUser(t *testing.T) {
	paymentID := newUUID()

	repo := &fakePaymentsRepo{
		getFn: func(ctx context.Context, id string) (payment.Payment, error) {
			return payment.Payment{
				ID:             id,
				RegistrationID: newUUID(),
				Method:         payment.MethodQRIS,
				Status:         payment.StatusCompleted,
				AmountPaid:     50000,
				CreatedAt:      time.Now().UTC(),
			}, nil
		},
	}

	h := handlers.NewPaymentsHandler(repo, &fakeRegistrationReader{})

	// a plain user who does not own the payment still retrieves it
	otherUser := authz.Actor{ID: newUUID(), Authenticated: true}

	r := setupRouter(http.MethodGet, "/payments/:id", otherUser, h.GetPaymentById)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/"+paymentID, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestCreatePayment_OwnRegistrationOnly(t *testing.T) {
	regID := newUUID()
	ownerID := newUUID()

	reader := &fakeRegistrationReader{
		getFn: func(ctx context.Context, id string) (registration.Registration, error) {
			return registration.Registration{
				ID:   id,
				User: user.Summary{ID: ownerID},
			}, nil
		},
	}

	body := `{"registrationId":"` + regID + `","paymentMethod":"QRIS","paymentStatus":"pending","amountPaid":50000}`

	tests := []struct {
		name           string
		actor          authz.Actor
		wantStatusCode int
	}{
		{
			name:           "owner_pays",
			actor:          authz.Actor{ID: ownerID, Authenticated: true},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "other_user_forbidden",
			actor:          authz.Actor{ID: newUUID(), Authenticated: true},
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewPaymentsHandler(&fakePaymentsRepo{}, reader)
			r := setupRouter(http.MethodPost, "/payments", tt.actor, h.CreatePayment)

			req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
