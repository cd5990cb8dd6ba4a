package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"licence-plate-checker/internal/auth"
	"licence-plate-checker/internal/config"
	"licence-plate-checker/internal/http/middleware"
	"licence-plate-checker/internal/model"
	"licence-plate-checker/internal/repository"
	"licence-plate-checker/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	attempts []model.ValidationAttempt
}

func (m *memStore) Create(_ context.Context, a *model.ValidationAttempt) error {
	m.attempts = append(m.attempts, *a)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*model.ValidationAttempt, error) {
	for i := range m.attempts {
		if m.attempts[i].ID == id {
			return &m.attempts[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) List(_ context.Context, filter repository.AttemptListFilter) ([]model.ValidationAttempt, error) {
	var out []model.ValidationAttempt
	for _, a := range m.attempts {
		if filter.CompactPlate != nil && a.CompactPlate != *filter.CompactPlate {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

const testOrigin = "http://localhost:4200"

func newTestRouter(t *testing.T, history *service.HistoryService, proxy http.Handler, parser *auth.Parser) *gin.Engine {
	t.Helper()
	h := NewHandler(history, proxy, zerolog.Nop())
	return NewRouter(h, middleware.Auth(parser), "test", []string{testOrigin})
}

func do(t *testing.T, r http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env.Data
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestRouter(t, nil, nil, nil), http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestCORS_OnlyFormOrigin(t *testing.T) {
	r := newTestRouter(t, nil, nil, nil)

	preflight := http.Header{
		"Origin":                        {testOrigin},
		"Access-Control-Request-Method": {http.MethodPost},
	}
	w := do(t, r, http.MethodOptions, "/api/fields/normalize", "", preflight)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != testOrigin {
		t.Fatalf("preflight status %d allow-origin %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}

	w = do(t, r, http.MethodPost, "/api/fields/normalize", `{"field":"letters","value":"a"}`, http.Header{"Origin": {"http://evil.example"}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin status %d", w.Code)
	}
}

func TestNormalizeField(t *testing.T) {
	r := newTestRouter(t, nil, nil, nil)
	cases := []struct {
		body string
		want normalizeFieldResponse
	}{
		{`{"field":"cityCode","value":"mü1"}`, normalizeFieldResponse{Field: "cityCode", Value: "MÜ"}},
		{`{"field":"cityCode","value":"muc"}`, normalizeFieldResponse{Field: "cityCode", Value: "MUC", Focus: "letters"}},
		{`{"field":"letters","value":"a-b"}`, normalizeFieldResponse{Field: "letters", Value: "AB", Focus: "numbers"}},
		{`{"field":"numbers","value":"12a34"}`, normalizeFieldResponse{Field: "numbers", Value: "1234"}},
	}
	for _, c := range cases {
		w := do(t, r, http.MethodPost, "/api/fields/normalize", c.body, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d %s", c.body, w.Code, w.Body.String())
		}
		if diff := cmp.Diff(c.want, decodeData[normalizeFieldResponse](t, w)); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", c.body, diff)
		}
	}

	if w := do(t, r, http.MethodPost, "/api/fields/normalize", `{"field":"region","value":"x"}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/fields/normalize", `{"value":"x"}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing field status %d", w.Code)
	}
}

func TestAssemblePlate(t *testing.T) {
	r := newTestRouter(t, nil, nil, nil)
	cases := []struct {
		body  string
		valid bool
		plate string
	}{
		{`{"cityCode":"b","letters":"mw","numbers":"1234"}`, true, "B-MW 1234"},
		{`{"cityCode":"B","numbers":"1234"}`, true, "B- 1234"},
		{`{"cityCode":"","numbers":"1234"}`, false, ""},
		{`{"variant":"free","value":"  ab12  "}`, true, "ab12"},
		{`{"variant":"free","value":" a "}`, false, ""},
	}
	for _, c := range cases {
		w := do(t, r, http.MethodPost, "/api/plates/assemble", c.body, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status %d", c.body, w.Code)
		}
		got := decodeData[assemblePlateResponse](t, w)
		if got.Valid != c.valid || got.Plate != c.plate {
			t.Fatalf("%s: got %+v", c.body, got)
		}
		if !c.valid && got.Reason == "" {
			t.Fatalf("%s: missing reason", c.body)
		}
	}

	if w := do(t, r, http.MethodPost, "/api/plates/assemble", `{"variant":"triple"}`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown variant status %d", w.Code)
	}
}

func TestAttempts(t *testing.T) {
	id := uuid.New()
	store := &memStore{attempts: []model.ValidationAttempt{
		{ID: id, Plate: "B-MW 1234", CompactPlate: "BMW1234", Outcome: model.AttemptOutcomeSucceeded},
		{ID: uuid.New(), Plate: "HH-A 1", CompactPlate: "HHA1", Outcome: model.AttemptOutcomeFailed},
	}}
	r := newTestRouter(t, service.NewHistoryService(store, 10), nil, nil)

	w := do(t, r, http.MethodGet, "/api/attempts?plate=b-mw%201234", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d %s", w.Code, w.Body.String())
	}
	list := decodeData[[]model.ValidationAttempt](t, w)
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("got %+v", list)
	}

	if w := do(t, r, http.MethodGet, "/api/attempts/"+id.String(), "", nil); w.Code != http.StatusOK {
		t.Fatalf("get status %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/attempts/"+uuid.NewString(), "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing status %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/attempts?limit=abc", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/attempts?outcome=maybe", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad outcome status %d", w.Code)
	}
}

func TestAttempts_Disabled(t *testing.T) {
	w := do(t, newTestRouter(t, nil, nil, nil), http.MethodGet, "/api/attempts", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
}

func TestAttempts_RequireToken(t *testing.T) {
	parser := auth.NewParser("secret")
	r := newTestRouter(t, service.NewHistoryService(&memStore{}, 10), nil, parser)

	if w := do(t, r, http.MethodGet, "/api/attempts", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/attempts", "", http.Header{"Authorization": {"Token abc"}}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad scheme status %d", w.Code)
	}

	token, err := parser.Sign(auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if w := do(t, r, http.MethodGet, "/api/attempts", "", http.Header{"Authorization": {"Bearer " + token}}); w.Code != http.StatusOK {
		t.Fatalf("valid token status %d %s", w.Code, w.Body.String())
	}

	// normalization stays public
	if w := do(t, r, http.MethodPost, "/api/fields/normalize", `{"field":"letters","value":"a"}`, nil); w.Code != http.StatusOK {
		t.Fatalf("public route status %d", w.Code)
	}
}

// postThrough serves r on a real listener; the reverse proxy needs a
// ResponseWriter that supports CloseNotify.
func postThrough(t *testing.T, r http.Handler, path, body string) (int, string) {
	t.Helper()
	front := httptest.NewServer(r)
	defer front.Close()

	resp, err := http.Post(front.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp.StatusCode, string(raw)
}

func TestValidatorProxy(t *testing.T) {
	var gotHost, gotPath, gotBody string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = r.Host
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"result":"VALID"}`)
	}))
	defer backend.Close()

	proxy, err := NewValidatorProxy(config.ValidatorConfig{BaseURL: backend.URL, HostHeader: "localhost:4220"}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, nil, proxy, nil)

	code, body := postThrough(t, r, "/licence-plate/validate", `{"licencePlate":"B-MW 1234"}`)
	if code != http.StatusOK || !strings.Contains(body, "VALID") {
		t.Fatalf("status %d %s", code, body)
	}
	if gotHost != "localhost:4220" || gotPath != "/licence-plate/validate" || gotBody != `{"licencePlate":"B-MW 1234"}` {
		t.Fatalf("backend saw host=%q path=%q body=%q", gotHost, gotPath, gotBody)
	}
}

func TestValidatorProxy_TargetHostAndFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Host)
	}))
	target := strings.TrimPrefix(backend.URL, "http://")

	proxy, err := NewValidatorProxy(config.ValidatorConfig{BaseURL: backend.URL}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRouter(t, nil, proxy, nil)

	if code, body := postThrough(t, r, "/licence-plate/validate", `{}`); code != http.StatusOK || body != target {
		t.Fatalf("backend saw host %q (status %d), want %q", body, code, target)
	}

	backend.Close()
	code, body := postThrough(t, r, "/licence-plate/validate", `{}`)
	if code != http.StatusBadGateway || !strings.Contains(body, "validator unavailable") {
		t.Fatalf("status %d %s", code, body)
	}
}
