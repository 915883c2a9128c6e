package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/dicoevent/dicoevent/internal/cache"
	"github.com/dicoevent/dicoevent/internal/domain/event"
	"github.com/dicoevent/dicoevent/internal/http/handlers"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/dicoevent/dicoevent/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementation of the handlers.EventsStore interface

type fakeEventsRepo struct {
	createFn      func(ctx context.Context, e event.Event) (event.Event, error)
	getFn         func(ctx context.Context, id string) (event.Event, error)
	listFn        func(ctx context.Context, filter postgres.ListEventsFilter) ([]event.Event, int, error)
	updateFn      func(ctx context.Context, e event.Event) (event.Event, error)
	deleteFn      func(ctx context.Context, id string) error
	organizerOfFn func(ctx context.Context, id string) (string, error)
}

func (f *fakeEventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}

	return event.Event{}, nil
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return event.Event{}, nil
}

func (f *fakeEventsRepo) List(ctx context.Context, filter postgres.ListEventsFilter) ([]event.Event, int, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}

	return nil, 0, nil
}

func (f *fakeEventsRepo) Update(ctx context.Context, e event.Event) (event.Event, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, e)
	}

	return event.Event{}, nil
}

func (f *fakeEventsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

func (f *fakeEventsRepo) OrganizerOf(ctx context.Context, id string) (string, error) {
	if f.organizerOfFn != nil {
		return f.organizerOfFn(ctx, id)
	}

	return newUUID(), nil
}

// small helper which mounts one handler per test with a fixed actor

func setupRouter(method, path string, actor authz.Actor, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(func(c *gin.Context) {
		c.Set(middlewares.CtxActor, actor)
		c.Next()
	})

	r.Handle(method, path, h)

	return r
}

func superActor() authz.Actor {
	return authz.Actor{ID: newUUID(), Authenticated: true, Superuser: true}
}

func sampleEventBody(organizerID string, start, end time.Time) string {
	return `{
		"name": "Go Conference",
		"description": "Talks and workshops",
		"location": "Jakarta",
		"startTime": "` + start.Format(time.RFC3339) + `",
		"endTime": "` + end.Format(time.RFC3339) + `",
		"status": "scheduled",
		"quota": 100,
		"category": "conference",
		"organizerId": "` + organizerID + `"
	}`
}

func TestCreateEventHandler(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	organizerID := newUUID()

	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeEventsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: sampleEventBody(organizerID, now.Add(24*time.Hour), now.Add(26*time.Hour)),
			repoSetUp: func(f *fakeEventsRepo) {
				f.createFn = func(ctx context.Context, e event.Event) (event.Event, error) {
					e.CreatedAt = now
					e.UpdatedAt = now
					return e, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "validation_error",
			body:           `{"name": ""}`,
			repoSetUp:      func(f *fakeEventsRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// end before start fails the ordering invariant
			name:           "time_order_error",
			body:           sampleEventBody(organizerID, now.Add(26*time.Hour), now.Add(24*time.Hour)),
			repoSetUp:      func(f *fakeEventsRepo) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown_organizer",
			body: sampleEventBody(organizerID, now.Add(24*time.Hour), now.Add(26*time.Hour)),
			repoSetUp: func(f *fakeEventsRepo) {
				f.createFn = func(ctx context.Context, e event.Event) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)

			r := setupRouter(http.MethodPost, "/events", superActor(), h.CreateEvent)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListEventsHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeEventsRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "first_page",
			url:  "/events",
			repoSetup: func(f *fakeEventsRepo) {
				f.listFn = func(ctx context.Context, filter postgres.ListEventsFilter) ([]event.Event, int, error) {
					if filter.Limit != 10 || filter.Offset != 0 {
						return nil, 0, errors.New("unexpected window")
					}

					return []event.Event{{ID: newUUID(), Name: "Event 1", StartTime: now, EndTime: now.Add(time.Hour)}}, 1, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name: "second_page_offset",
			url:  "/events?page=2",
			repoSetup: func(f *fakeEventsRepo) {
				f.listFn = func(ctx context.Context, filter postgres.ListEventsFilter) ([]event.Event, int, error) {
					if filter.Offset != 10 {
						return nil, 0, errors.New("offset should be 10 on page 2")
					}

					return []event.Event{}, 11, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      11,
		},
		{
			name: "status_filter_passed",
			url:  "/events?status=scheduled",
			repoSetup: func(f *fakeEventsRepo) {
				f.listFn = func(ctx context.Context, filter postgres.ListEventsFilter) ([]event.Event, int, error) {
					if filter.Status == nil || *filter.Status != "scheduled" {
						return nil, 0, errors.New("status filter not passed")
					}

					return []event.Event{}, 0, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name:           "invalid_status_filter",
			url:            "/events?status=nope",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/events",
			repoSetup: func(f *fakeEventsRepo) {
				f.listFn = func(ctx context.Context, filter postgres.ListEventsFilter) ([]event.Event, int, error) {
					return nil, 0, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}
			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/events", superActor(), h.ListEvents)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp struct {
					Count int `json:"count"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if resp.Count != tt.wantCount {
					t.Fatalf("got count %d, want %d", resp.Count, tt.wantCount)
				}
			}
		})
	}
}

func TestGetEventByIdHandler(t *testing.T) {
	now := time.Now().UTC()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(f *fakeEventsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/events/" + validID,
			repoSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{ID: id, Name: "Event-1", StartTime: now, EndTime: now.Add(time.Hour)}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/events/" + missingID,
			repoSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{}, event.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid_id",
			url:            "/events/not-a-uuid",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/events/" + validID,
			repoSetup: func(f *fakeEventsRepo) {
				f.getFn = func(ctx context.Context, id string) (event.Event, error) {
					return event.Event{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewEventsHandler(fakeRepo)
			r := setupRouter(http.MethodGet, "/events/:id", superActor(), h.GetEventById)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateEventHandler_OrganizerOwnership(t *testing.T) {
	now := time.Now().UTC()
	eventID := newUUID()
	ownerID := newUUID()

	stored := event.Event{
		ID:          eventID,
		Name:        "Owned Event",
		Description: "Desc",
		Location:    "Bandung",
		StartTime:   now.Add(24 * time.Hour),
		EndTime:     now.Add(26 * time.Hour),
		Status:      event.StatusScheduled,
		Quota:       50,
		Category:    "meetup",
		OrganizerID: ownerID,
	}

	body := `{"name": "Renamed Event"}`

	tests := []struct {
		name           string
		actor          authz.Actor
		wantStatusCode int
	}{
		{
			name:           "superuser_can_update_any",
			actor:          superActor(),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "owning_organizer_can_update",
			actor:          authz.Actor{ID: ownerID, Authenticated: true, Roles: []string{"organizer"}},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "other_organizer_forbidden",
			actor:          authz.Actor{ID: newUUID(), Authenticated: true, Roles: []string{"organizer"}},
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeEventsRepo{
				getFn: func(ctx context.Context, id string) (event.Event, error) {
					return stored, nil
				},
				updateFn: func(ctx context.Context, e event.Event) (event.Event, error) {
					return e, nil
				},
			}

			h := handlers.NewEventsHandler(fakeRepo)
			r := setupRouter(http.MethodPut, "/events/:id", tt.actor, h.UpdateEvent)

			req := httptest.NewRequest(http.MethodPut, "/events/"+eventID, bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteEventHandler(t *testing.T) {
	validID := newUUID()

	fakeRepo := &fakeEventsRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return nil
		},
	}

	h := handlers.NewEventsHandler(fakeRepo)
	r := setupRouter(http.MethodDelete, "/events/:id", superActor(), h.DeleteEvent)

	req := httptest.NewRequest(http.MethodDelete, "/events/"+validID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusNoContent, w.Body.String())
	}
}

func TestGetEventById_CacheRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	eventID := newUUID()

	calls := 0
	fakeRepo := &fakeEventsRepo{
		getFn: func(ctx context.Context, id string) (event.Event, error) {
			calls++
			return event.Event{ID: id, Name: "Cached Event", StartTime: now, EndTime: now.Add(time.Hour), OrganizerID: newUUID()}, nil
		},
		updateFn: func(ctx context.Context, e event.Event) (event.Event, error) {
			return e, nil
		},
	}

	c := cache.NewDetailCache(cache.NewMemoryStore(), 30*time.Second)
	h := handlers.NewEventsHandlerWithCache(fakeRepo, c, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middlewares.CtxActor, superActor())
		c.Next()
	})
	r.GET("/events/:id", h.GetEventById)
	r.PUT("/events/:id", h.UpdateEvent)

	// first read misses and fills the cache
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/events/"+eventID, nil))

	if w1.Code != http.StatusOK {
		t.Fatalf("first read got %d body=%s", w1.Code, w1.Body.String())
	}
	if got := w1.Header().Get("X-Source"); got != "store" {
		t.Fatalf("first read source = %q, want store", got)
	}

	// second read is served from the cache
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/events/"+eventID, nil))

	if got := w2.Header().Get("X-Source"); got != "cache" {
		t.Fatalf("second read source = %q, want cache", got)
	}
	if calls != 1 {
		t.Fatalf("expected 1 store read, got %d", calls)
	}

	// an update invalidates synchronously; the next read hits the store
	wu := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/events/"+eventID, bytes.NewBufferString(`{"name": "Renamed"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(wu, req)

	if wu.Code != http.StatusOK {
		t.Fatalf("update got %d body=%s", wu.Code, wu.Body.String())
	}

	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "/events/"+eventID, nil))

	if got := w3.Header().Get("X-Source"); got != "store" {
		t.Fatalf("read after update source = %q, want store", got)
	}
}
