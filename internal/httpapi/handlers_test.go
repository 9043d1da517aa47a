package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workforce-lodging/internal/accounts"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/auth"
	"workforce-lodging/internal/employers"
	"workforce-lodging/internal/hotels"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/reporting"
	"workforce-lodging/internal/rooms"
	"workforce-lodging/internal/users"
	"workforce-lodging/internal/workers"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const testHotelID = "0b6f7c4e-2d1a-4e8b-9c3f-5a7d9e1b2c4d"

type app struct {
	router *gin.Engine
	users  *users.MemoryStore
	tokens *auth.Manager
	audit  *audit.MemoryRepo
}

type failingHotels struct{}

func (failingHotels) List(ctx context.Context) ([]hotels.Hotel, error) {
	return nil, errors.New("pq: connection refused to 10.0.0.7")
}
func (failingHotels) Exists(ctx context.Context, id string) (bool, error) { return false, nil }
func (failingHotels) Count(ctx context.Context) (int, error)              { return 0, nil }

func newApp(t *testing.T, limiter Limiter, hotelStore hotels.Store) app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewManager("handler-test-secret")
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	hasher, err := auth.NewHasher(auth.SchemeBcrypt)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	if hotelStore == nil {
		hotelStore = hotels.NewMemoryStore(hotels.Hotel{ID: testHotelID, Name: "Harbor Inn"})
	}

	userStore := users.NewMemoryStore()
	auditRepo := audit.NewMemoryRepo()
	auditSvc := audit.NewService(auditRepo)
	resolver := employers.NewResolver(userStore)
	roomsRepo := rooms.NewMemoryRepo()

	h := &Handlers{
		Accounts:  accounts.NewService(userStore, hasher.WithBcryptCost(bcrypt.MinCost), tokens, auditSvc, "staff-code"),
		Employers: employers.NewService(employers.NewMemoryRepo(userStore), resolver, auditSvc),
		Rooms:     rooms.NewEngine(roomsRepo, resolver, hotelStore, auditSvc),
		Hotels:    hotelStore,
		Reports:   reporting.NewService(reporting.NewMemoryRepo(roomsRepo, auditRepo), resolver, userStore, hotelStore),
		Workers:   workers.NewService(workers.NewMemoryStore(), resolver, hotelStore, auditSvc),
		Cookie:    auth.CookieOptions{Name: "session"},
	}
	r := NewRouter(h, RouterOptions{
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Verifier: tokens,
		Limiter:  limiter,
	})
	return app{router: r, users: userStore, tokens: tokens, audit: auditRepo}
}

func (a app) do(t *testing.T, method, path string, body any, session string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: session})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func sessionFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c.Value
		}
	}
	t.Fatalf("no session cookie in response: %v", w.Header().Values("Set-Cookie"))
	return ""
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

// staffSession creates a staff user directly in the store and signs a token for it.
func (a app) staffSession(t *testing.T, role identity.Role) string {
	t.Helper()
	u, err := a.users.Create(context.Background(), users.User{Email: strings.ToLower(string(role)) + "@hotel.test", Name: "Staff", Role: role})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	token, err := a.tokens.Issue(time.Now(), u.ID, role)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func TestEmployerOnboardingScenario(t *testing.T) {
	a := newApp(t, nil, nil)

	w := a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "Ada", "email": "ada@staffing.test", "password": "secret1"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d %s", w.Code, w.Body.String())
	}
	emp := sessionFrom(t, w)

	w = a.do(t, http.MethodPost, "/api/employer/requests", map[string]any{
		"hotel_id": testHotelID, "stay_start": "2025-06-01", "stay_end": "2025-06-05",
		"headcount": 2, "room_type_mix": map[string]int{"SINGLE": 2, "DOUBLE": 0},
	}, emp)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "no employer") {
		t.Fatalf("expected 400 no employer before onboarding, got %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/api/employer/account", map[string]any{"name": "Acme Staffing"}, emp)
	if w.Code != http.StatusCreated {
		t.Fatalf("create employer: expected 201, got %d %s", w.Code, w.Body.String())
	}
	w = a.do(t, http.MethodPost, "/api/employer/account", map[string]any{"name": "Again"}, emp)
	if w.Code != http.StatusConflict {
		t.Fatalf("second employer: expected 409, got %d", w.Code)
	}

	w = a.do(t, http.MethodGet, "/api/hotels", nil, emp)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), testHotelID) {
		t.Fatalf("hotels: %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/api/employer/requests", map[string]any{
		"hotel_id": testHotelID, "stay_start": "2025-06-01", "stay_end": "2025-06-05",
		"headcount": 2, "room_type_mix": map[string]int{"SINGLE": 2, "DOUBLE": 0},
	}, emp)
	if w.Code != http.StatusCreated {
		t.Fatalf("create request: expected 201, got %d %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	id, _ := created["id"].(string)
	if id == "" || created["status"] != "SUBMITTED" {
		t.Fatalf("unexpected create response %v", created)
	}

	desk := a.staffSession(t, identity.RoleFrontdesk)
	w = a.do(t, http.MethodPost, "/api/frontdesk/requests/"+id+"/decision", map[string]any{"decision": "ACCEPT"}, desk)
	if w.Code != http.StatusOK || decode(t, w)["status"] != "ACCEPTED" {
		t.Fatalf("decision: %d %s", w.Code, w.Body.String())
	}
	w = a.do(t, http.MethodPost, "/api/frontdesk/requests/"+id+"/decision", map[string]any{"decision": "REJECT"}, desk)
	if w.Code != http.StatusConflict {
		t.Fatalf("second decision: expected 409, got %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/api/employer/requests/"+id, nil, emp)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ACCEPTED"`) {
		t.Fatalf("get request: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"stay_start":"2025-06-01"`) {
		t.Fatalf("dates must serialize as YYYY-MM-DD: %s", w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/api/employer/requests/"+id+"/extend", map[string]any{"week_start": "2025-06-05", "week_end": "2025-06-15"}, emp)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("long extension: expected 400, got %d", w.Code)
	}
	w = a.do(t, http.MethodPost, "/api/employer/requests/"+id+"/extend", map[string]any{"week_start": "2025-06-05", "week_end": "2025-06-12"}, emp)
	if w.Code != http.StatusCreated {
		t.Fatalf("extension: expected 201, got %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/api/employer/summary", nil, emp)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"activeRequests":1`) {
		t.Fatalf("summary: %d %s", w.Code, w.Body.String())
	}

	for _, ev := range a.audit.Events() {
		if ev.IPAddress == "" {
			t.Fatalf("audit event without client ip: %+v", ev)
		}
	}
}

func TestGuards_UnauthenticatedBeforeForbidden(t *testing.T) {
	a := newApp(t, nil, nil)
	w := a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "E", "email": "e@staffing.test", "password": "secret1"}, "")
	emp := sessionFrom(t, w)

	cases := []struct {
		name    string
		session string
		want    int
		body    string
	}{
		{"anonymous", "", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"garbage cookie", "not-a-jwt", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"employer", emp, http.StatusForbidden, `{"error":"Forbidden"}`},
	}
	for _, tc := range cases {
		w := a.do(t, http.MethodGet, "/api/frontdesk/requests", nil, tc.session)
		if w.Code != tc.want || w.Body.String() != tc.body {
			t.Fatalf("%s: expected %d %s, got %d %s", tc.name, tc.want, tc.body, w.Code, w.Body.String())
		}
	}

	desk := a.staffSession(t, identity.RoleFrontdesk)
	if w := a.do(t, http.MethodGet, "/api/admin/users", nil, desk); w.Code != http.StatusForbidden {
		t.Fatalf("front desk on admin route: expected 403, got %d", w.Code)
	}
	admin := a.staffSession(t, identity.RoleAdmin)
	if w := a.do(t, http.MethodGet, "/api/frontdesk/summary", nil, admin); w.Code != http.StatusOK {
		t.Fatalf("admin on front desk route: expected 200, got %d", w.Code)
	}
	if w := a.do(t, http.MethodGet, "/api/health", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
}

func TestLogin_WrongPasswordResponsesAreIdentical(t *testing.T) {
	a := newApp(t, nil, nil)
	a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "A", "email": "ada@staffing.test", "password": "secret1"}, "")

	w1 := a.do(t, http.MethodPost, "/api/login", map[string]any{"email": "ada@staffing.test", "password": "wrong-1"}, "")
	w2 := a.do(t, http.MethodPost, "/api/login", map[string]any{"email": "nobody@staffing.test", "password": "wrong-2"}, "")
	if w1.Code != http.StatusUnauthorized || w2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", w1.Code, w2.Code)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("bodies differ: %s vs %s", w1.Body.String(), w2.Body.String())
	}
	if len(w1.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}

	w := a.do(t, http.MethodPost, "/api/login", map[string]any{"email": "ada@staffing.test", "password": "secret1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	session := sessionFrom(t, w)
	me := a.do(t, http.MethodGet, "/api/me", nil, session)
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), "ada@staffing.test") || strings.Contains(me.Body.String(), "password") {
		t.Fatalf("me: %d %s", me.Code, me.Body.String())
	}
}

func TestLogout_ExpiresCookie(t *testing.T) {
	a := newApp(t, nil, nil)
	w := a.do(t, http.MethodPost, "/api/logout", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].Value != "" || cookies[0].MaxAge >= 0 || !cookies[0].HttpOnly {
		t.Fatalf("unexpected logout cookie %+v", cookies)
	}
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	a := newApp(t, nil, failingHotels{})
	w := a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "A", "email": "ada@staffing.test", "password": "secret1"}, "")
	session := sessionFrom(t, w)

	w = a.do(t, http.MethodGet, "/api/hotels", nil, session)
	if w.Code != http.StatusInternalServerError || w.Body.String() != `{"error":"internal error"}` {
		t.Fatalf("expected opaque 500, got %d %s", w.Code, w.Body.String())
	}
}

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

func TestThrottle(t *testing.T) {
	blocked := &fakeLimiter{allow: false}
	a := newApp(t, blocked, nil)
	w := a.do(t, http.MethodPost, "/api/login", map[string]any{"email": "a@b.test", "password": "x"}, "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if len(blocked.keys) != 1 || !strings.HasPrefix(blocked.keys[0], "login:") {
		t.Fatalf("unexpected limiter keys %v", blocked.keys)
	}

	broken := &fakeLimiter{err: errors.New("redis down")}
	a = newApp(t, broken, nil)
	w = a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "A", "email": "ada@staffing.test", "password": "secret1"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("limiter failure must fail open, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	a := newApp(t, nil, nil)
	w := a.do(t, http.MethodGet, "/api/health", nil, "")
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy", "Content-Security-Policy", "X-Request-Id"} {
		if w.Header().Get(h) == "" {
			t.Fatalf("missing header %s", h)
		}
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must be off unless enabled")
	}
}

func TestAdminChangesRole(t *testing.T) {
	a := newApp(t, nil, nil)
	a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "A", "email": "ada@staffing.test", "password": "secret1"}, "")
	u, err := a.users.GetByEmail(context.Background(), "ada@staffing.test")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	admin := a.staffSession(t, identity.RoleAdmin)

	w := a.do(t, http.MethodPatch, "/api/admin/users/"+u.ID+"/role", map[string]any{"role": "SUPERUSER"}, admin)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad role: expected 400, got %d", w.Code)
	}
	w = a.do(t, http.MethodPatch, "/api/admin/users/"+u.ID+"/role", map[string]any{"role": "FRONTDESK"}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("change role: %d %s", w.Code, w.Body.String())
	}
	w = a.do(t, http.MethodGet, "/api/admin/users", nil, admin)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"role":"FRONTDESK"`) {
		t.Fatalf("list users: %d %s", w.Code, w.Body.String())
	}
}

func TestSignup_StaffRoleWithAdminCode(t *testing.T) {
	a := newApp(t, nil, nil)

	w := a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "Root", "email": "root@hotel.test", "password": "secret1", "role": "ADMIN", "adminCode": "wrong"}, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("wrong code: expected 403, got %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "Root", "email": "root@hotel.test", "password": "secret1", "role": "ADMIN", "adminCode": "staff-code"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup with adminCode: expected 201, got %d %s", w.Code, w.Body.String())
	}
	admin := sessionFrom(t, w)
	if w := a.do(t, http.MethodGet, "/api/admin/summary", nil, admin); w.Code != http.StatusOK {
		t.Fatalf("new admin should reach admin routes, got %d", w.Code)
	}
}

func TestWorkerRoster_ImportAndList(t *testing.T) {
	a := newApp(t, nil, nil)
	w := a.do(t, http.MethodPost, "/api/signup", map[string]any{"name": "Ada", "email": "ada@staffing.test", "password": "secret1"}, "")
	emp := sessionFrom(t, w)

	w = a.do(t, http.MethodGet, "/api/employer/workers", nil, emp)
	if w.Code != http.StatusOK || w.Body.String() != `{"hotels":[],"buckets":{"byHotel":[],"unassigned":0,"upcoming":0,"checkedOut30d":0},"workers":[]}` {
		t.Fatalf("unlinked roster: %d %s", w.Code, w.Body.String())
	}
	bulk := map[string]any{"workers": []map[string]any{{"name": "Ana", "phone": "555-0001"}, {"name": "Ben"}}}
	w = a.do(t, http.MethodPost, "/api/employer/workers/bulk", bulk, emp)
	if w.Code != http.StatusBadRequest || w.Body.String() != `{"error":"employer: No employer"}` {
		t.Fatalf("unlinked import: %d %s", w.Code, w.Body.String())
	}

	a.do(t, http.MethodPost, "/api/employer/account", map[string]any{"name": "Acme Staffing"}, emp)
	w = a.do(t, http.MethodPost, "/api/employer/workers/bulk", map[string]any{"workers": []any{}}, emp)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty import: expected 400, got %d", w.Code)
	}
	w = a.do(t, http.MethodPost, "/api/employer/workers/bulk", bulk, emp)
	if w.Code != http.StatusOK || w.Body.String() != `{"count":2,"ok":true}` {
		t.Fatalf("import: %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodGet, "/api/employer/workers?q=ana", nil, emp)
	if w.Code != http.StatusOK {
		t.Fatalf("roster: %d %s", w.Code, w.Body.String())
	}
	var roster workers.Roster
	if err := json.Unmarshal(w.Body.Bytes(), &roster); err != nil {
		t.Fatalf("decode roster: %v", err)
	}
	if len(roster.Workers) != 1 || roster.Workers[0].Name != "Ana" || roster.Workers[0].Status != workers.StatusUnassigned {
		t.Fatalf("unexpected roster %+v", roster.Workers)
	}
	if len(roster.Hotels) != 1 || roster.Hotels[0].ID != testHotelID {
		t.Fatalf("expected hotel counts, got %+v", roster.Hotels)
	}

	desk := a.staffSession(t, identity.RoleFrontdesk)
	if w := a.do(t, http.MethodGet, "/api/employer/workers", nil, desk); w.Code != http.StatusForbidden {
		t.Fatalf("front desk on roster: expected 403, got %d", w.Code)
	}
}
