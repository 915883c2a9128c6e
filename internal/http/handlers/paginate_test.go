package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(t *testing.T, url string) *gin.Context {
	t.Helper()

	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest("GET", url, nil)
	ctx.Request.Host = "api.example.com"

	return ctx
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"default", "/events", 1},
		{"explicit", "/events?page=3", 3},
		{"zero_clamped", "/events?page=0", 1},
		{"negative_clamped", "/events?page=-5", 1},
		{"garbage_defaults", "/events?page=abc", 1},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := pageFromQuery(testContext(t, tt.url)); got != tt.want {
				t.Fatalf("pageFromQuery(%q) = %d, want %d", tt.url, got, tt.want)
			}
		})
	}
}

func TestPageWindow(t *testing.T) {
	limit, offset := pageWindow(1)
	if limit != PageSize || offset != 0 {
		t.Fatalf("page 1: got limit=%d offset=%d", limit, offset)
	}

	limit, offset = pageWindow(4)
	if limit != PageSize || offset != 30 {
		t.Fatalf("page 4: got limit=%d offset=%d", limit, offset)
	}
}

func TestListEnvelopeLinks(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		total        int
		page         int
		wantNext     string
		wantPrevious string
	}{
		{
			name:     "first_of_many",
			url:      "/events?page=1",
			total:    25,
			page:     1,
			wantNext: "http://api.example.com/events?page=2",
		},
		{
			// middle page keeps filters and drops page= when walking back to 1
			name:         "middle_keeps_filters",
			url:          "/events?page=2&status=scheduled",
			total:        25,
			page:         2,
			wantNext:     "http://api.example.com/events?page=3&status=scheduled",
			wantPrevious: "http://api.example.com/events?status=scheduled",
		},
		{
			name:         "last_page",
			url:          "/events?page=3",
			total:        25,
			page:         3,
			wantPrevious: "http://api.example.com/events?page=2",
		},
		{
			name:  "single_page",
			url:   "/events",
			total: 5,
			page:  1,
		},
		{
			name:  "empty",
			url:   "/events",
			total: 0,
			page:  1,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			env := listEnvelope(testContext(t, tt.url), "events", tt.total, tt.page, []string{})

			if env["count"] != tt.total {
				t.Fatalf("count = %v, want %d", env["count"], tt.total)
			}

			next, _ := env["next"].(*string)
			previous, _ := env["previous"].(*string)

			if tt.wantNext == "" {
				if next != nil {
					t.Fatalf("next = %q, want null", *next)
				}
			} else if next == nil || *next != tt.wantNext {
				t.Fatalf("next = %v, want %q", next, tt.wantNext)
			}

			if tt.wantPrevious == "" {
				if previous != nil {
					t.Fatalf("previous = %q, want null", *previous)
				}
			} else if previous == nil || *previous != tt.wantPrevious {
				t.Fatalf("previous = %v, want %q", previous, tt.wantPrevious)
			}
		})
	}
}
