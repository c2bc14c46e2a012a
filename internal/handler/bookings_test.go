package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/railbook/internal/auth"
	"github.com/sakif/railbook/internal/booking"
	"github.com/sakif/railbook/internal/directory"
	"github.com/sakif/railbook/internal/model"
)

// =========================================================================
// TEST SERVER
// =========================================================================
//
// These are end-to-end tests through the real router: signup and login over
// HTTP, the session cookie carried to the booking routes, domain errors
// mapped to status codes by writeError. Only the store is faked.

type fakeUserStore struct {
	saves int
}

func (f *fakeUserStore) Load(_ context.Context) ([]model.User, error) {
	return []model.User{}, nil
}

func (f *fakeUserStore) Save(_ context.Context, _ []model.User) error {
	f.saves++
	return nil
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	trains := directory.NewTrainDirectory([]model.Train{
		{ID: "t001", Number: "12301", Stations: []string{"Delhi", "Kanpur", "Patna"}},
	})
	users := directory.NewUserDirectory([]model.User{})
	st := &fakeUserStore{}

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	sessions := booking.NewSessions(users, auth.NewPlain(), st, logger)
	engine := booking.NewEngine(trains, users, st, logger)

	authHandler := NewAuthHandler(sessions, tokens, logger)
	trainHandler := NewTrainHandler(engine, logger)
	bookingHandler := NewBookingHandler(engine, sessions, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignUp)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/trains", trainHandler.HandleList)
			r.Get("/trains/search", trainHandler.HandleSearch)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Post("/bookings", bookingHandler.HandleBook)
			r.Get("/bookings", bookingHandler.HandleList)
			r.Delete("/bookings/id/{ticketID}", bookingHandler.HandleCancelByID)
			r.Delete("/bookings/index/{index}", bookingHandler.HandleCancelByIndex)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// signupAndLogin registers a user over HTTP and returns the session cookie.
func signupAndLogin(t *testing.T, router http.Handler, name, password string) *http.Cookie {
	t.Helper()

	body := `{"name":"` + name + `","password":"` + password + `"}`
	if rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set the token cookie")
	return nil
}

func errType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

// =========================================================================
// TESTS
// =========================================================================

func TestBookingFlow_EndToEnd(t *testing.T) {
	router := newTestRouter(t)
	cookie := signupAndLogin(t, router, "Alice", "pass123")

	// Book Delhi -> Patna on the linear train.
	rec := doJSON(t, router, http.MethodPost, "/api/bookings",
		`{"from":"Delhi","to":"Patna","date":"01-01-2026","train":"12301"}`, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("book status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	ticketID := created["ticket_id"]
	if ticketID == "" {
		t.Fatal("booking response missing ticket_id")
	}

	// The listing shows it at position 1.
	rec = doJSON(t, router, http.MethodGet, "/api/bookings", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []booking.IndexedTicket
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Index != 1 || listed[0].Ticket.ID != ticketID {
		t.Fatalf("listing = %+v, want one entry at index 1", listed)
	}

	// Cancel by the returned ID; the list is empty again.
	rec = doJSON(t, router, http.MethodDelete, "/api/bookings/id/"+ticketID, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/bookings", "", cookie)
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Errorf("listing after cancel = %d entries, want 0", len(listed))
	}
}

func TestBooking_StatusCodeMapping(t *testing.T) {
	router := newTestRouter(t)
	cookie := signupAndLogin(t, router, "Alice", "pass123")

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{
			name:      "unknown train is 404",
			body:      `{"from":"Delhi","to":"Patna","date":"01-01-2026","train":"99999"}`,
			wantCode:  http.StatusNotFound,
			wantError: "not_found",
		},
		{
			name:      "reverse direction is 422",
			body:      `{"from":"Patna","to":"Delhi","date":"01-01-2026","train":"12301"}`,
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "route_not_covered",
		},
		{
			name:      "bad date is 400",
			body:      `{"from":"Delhi","to":"Patna","date":"2026-01-01","train":"12301"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "invalid_date",
		},
		{
			name:      "blank fields are 400",
			body:      `{"from":"","to":"","date":"","train":""}`,
			wantCode:  http.StatusBadRequest,
			wantError: "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/bookings", tt.body, cookie)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if got := errType(t, rec); got != tt.wantError {
				t.Errorf("error type = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestBooking_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/bookings",
		`{"from":"Delhi","to":"Patna","date":"01-01-2026","train":"12301"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous book status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/bookings", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list status = %d, want 401", rec.Code)
	}
}

func TestSignup_DuplicateIs409(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"Alice","password":"pass123"}`
	if rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", rec.Code)
	}

	// Case-insensitive duplicate.
	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", `{"name":"alice","password":"x"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", rec.Code)
	}
	if got := errType(t, rec); got != "conflict" {
		t.Errorf("error type = %q, want conflict", got)
	}
}

func TestLogin_BadCredentialsAre401(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"Alice","password":"pass123"}`
	if rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", body, nil); rec.Code != http.StatusCreated {
		t.Fatal("signup failed")
	}

	for _, bad := range []string{
		`{"name":"Alice","password":"wrong"}`,
		`{"name":"Mallory","password":"pass123"}`,
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", bad, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login %s status = %d, want 401", bad, rec.Code)
		}
	}
}

func TestCancelByIndex_Mapping(t *testing.T) {
	router := newTestRouter(t)
	cookie := signupAndLogin(t, router, "Alice", "pass123")

	rec := doJSON(t, router, http.MethodPost, "/api/bookings",
		`{"from":"Delhi","to":"Patna","date":"01-01-2026","train":"12301"}`, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatal("booking failed")
	}

	// Out of range (0 and size+1) → 400.
	for _, idx := range []string{"0", "2"} {
		rec := doJSON(t, router, http.MethodDelete, "/api/bookings/index/"+idx, "", cookie)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("cancel index %s status = %d, want 400", idx, rec.Code)
		}
		if got := errType(t, rec); got != "index_out_of_range" {
			t.Errorf("error type = %q, want index_out_of_range", got)
		}
	}

	// Non-numeric index → 400 validation error.
	rec = doJSON(t, router, http.MethodDelete, "/api/bookings/index/abc", "", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cancel index abc status = %d, want 400", rec.Code)
	}

	// Valid index removes the ticket.
	rec = doJSON(t, router, http.MethodDelete, "/api/bookings/index/1", "", cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("cancel index 1 status = %d, want 200", rec.Code)
	}
}

func TestTrains_PublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/trains", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trains status = %d", rec.Code)
	}
	var trains []trainResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &trains); err != nil {
		t.Fatal(err)
	}
	if len(trains) != 1 || trains[0].Number != "12301" {
		t.Errorf("trains = %+v, want the one seeded train", trains)
	}

	// Search is symmetric and needs no login.
	for _, q := range []string{"from=Delhi&to=Patna", "from=Patna&to=Delhi"} {
		rec := doJSON(t, router, http.MethodGet, "/api/trains/search?"+q, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("search status = %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &trains); err != nil {
			t.Fatal(err)
		}
		if len(trains) != 1 {
			t.Errorf("search %s = %d matches, want 1", q, len(trains))
		}
	}

	// Blank endpoints yield an empty array, not an error.
	rec = doJSON(t, router, http.MethodGet, "/api/trains/search?from=&to=Patna", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("blank search status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trains); err != nil {
		t.Fatal(err)
	}
	if len(trains) != 0 {
		t.Errorf("blank search = %d matches, want 0", len(trains))
	}
}

func TestMe(t *testing.T) {
	router := newTestRouter(t)
	cookie := signupAndLogin(t, router, "Alice", "pass123")

	rec := doJSON(t, router, http.MethodGet, "/api/me", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	var me map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatal(err)
	}
	if me["name"] != "Alice" {
		t.Errorf("me.name = %v, want Alice", me["name"])
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous me status = %d, want 401", rec.Code)
	}
}
