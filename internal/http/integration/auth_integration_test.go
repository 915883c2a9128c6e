package integration__test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type tokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func postJSON(router http.Handler, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestAuthIntegration_LoginRefreshLogout(t *testing.T) {
	router, pool, _ := setupTestRouter(t)

	resetDB(t, pool)
	defer resetDB(t, pool)

	seedUser(t, pool, "sam", "sam@example.com", "correct-horse", false)

	// wrong password is rejected
	w := postJSON(router, "/login", `{"email":"sam@example.com","password":"nope"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("[bad password] got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}

	// login issues a token pair
	w = postJSON(router, "/login", `{"email":"sam@example.com","password":"correct-horse"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("[login] got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var pair tokenPairResponse
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("failed to unmarshal token pair: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	// refresh rotates: a new pair comes back and the old refresh dies
	w = postJSON(router, "/token/refresh", `{"refresh":"`+pair.Refresh+`"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("[refresh] got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var rotated tokenPairResponse
	if err := json.Unmarshal(w.Body.Bytes(), &rotated); err != nil {
		t.Fatalf("failed to unmarshal rotated pair: %v", err)
	}
	if rotated.Refresh == pair.Refresh {
		t.Fatal("refresh token was not rotated")
	}

	w = postJSON(router, "/token/refresh", `{"refresh":"`+pair.Refresh+`"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("[replayed refresh] got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}

	// logout revokes the whole family
	w = postJSON(router, "/logout", `{}`, rotated.Access)
	if w.Code != http.StatusNoContent {
		t.Fatalf("[logout] got status %d, want %d, body=%s", w.Code, http.StatusNoContent, w.Body.String())
	}

	w = postJSON(router, "/token/refresh", `{"refresh":"`+rotated.Refresh+`"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("[refresh after logout] got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}

func TestAuthIntegration_UnknownUser(t *testing.T) {
	router, pool, _ := setupTestRouter(t)

	resetDB(t, pool)
	defer resetDB(t, pool)

	w := postJSON(router, "/login", `{"email":"ghost@example.com","password":"whatever"}`, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}
