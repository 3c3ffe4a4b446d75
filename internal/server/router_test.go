package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/crm-documents/auth"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/metrics"
	"github.com/diewo77/crm-documents/internal/models"
	"github.com/diewo77/crm-documents/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users, err := auth.NewDirectory("admin123", "user123")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	h := New(gdb, Options{
		Settings: services.Settings{Now: func() time.Time { return now }},
		MailFrom: "crm@example.com",
		Users:    users,
		Sessions: auth.NewSessions("test-secret", time.Hour),
		Metrics:  metrics.New(),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	return srv, &http.Client{Jar: jar}
}

func call(t *testing.T, c *http.Client, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestHealth(t *testing.T) {
	srv, c := newTestServer(t)
	for _, path := range []string{"/health", "/healthz"} {
		code, body := call(t, c, http.MethodGet, srv.URL+path, "")
		if code != http.StatusOK || !strings.Contains(body, `"ok"`) {
			t.Fatalf("%s: %d %s", path, code, body)
		}
	}
}

func TestAPIRequiresSession(t *testing.T) {
	srv, c := newTestServer(t)
	code, body := call(t, c, http.MethodGet, srv.URL+"/api/proposals", "")
	if code != http.StatusUnauthorized || !strings.Contains(body, "unauthorized") {
		t.Fatalf("expected 401, got %d %s", code, body)
	}
	code, _ = call(t, c, http.MethodGet, srv.URL+"/api/auth/session", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("session without cookie: %d", code)
	}
}

func TestEndToEnd(t *testing.T) {
	srv, c := newTestServer(t)
	code, body := call(t, c, http.MethodPost, srv.URL+"/api/auth/login", `{"username":"admin","password":"admin123"}`)
	if code != http.StatusOK {
		t.Fatalf("login: %d %s", code, body)
	}

	code, body = call(t, c, http.MethodPost, srv.URL+"/api/proposals",
		`{"title":"Site","items":[{"description":"Design","quantity":1,"unitPrice":800},{"description":"SEO","quantity":1,"unitPrice":200}]}`)
	if code != http.StatusCreated || !strings.Contains(body, `"number":"PRO-2026-001"`) {
		t.Fatalf("create proposal: %d %s", code, body)
	}

	code, body = call(t, c, http.MethodGet, srv.URL+"/api/proposals/1/invoice", "")
	if code != http.StatusOK {
		t.Fatalf("import: %d %s", code, body)
	}
	code, body = call(t, c, http.MethodPost, srv.URL+"/api/invoices", body)
	if code != http.StatusCreated {
		t.Fatalf("create invoice: %d %s", code, body)
	}
	var inv struct {
		Number     string  `json:"number"`
		Total      float64 `json:"total"`
		ProposalID *uint   `json:"proposalId"`
	}
	if err := json.Unmarshal([]byte(body), &inv); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}
	if inv.Number != "FAT-2026-001" || inv.Total != 1230 || inv.ProposalID == nil || *inv.ProposalID != 1 {
		t.Fatalf("unexpected invoice %+v", inv)
	}

	code, body = call(t, c, http.MethodGet, srv.URL+"/api/invoices/revenue", "")
	if code != http.StatusOK || !strings.Contains(body, `"revenue":0`) {
		t.Fatalf("revenue: %d %s", code, body)
	}

	code, _ = call(t, c, http.MethodGet, srv.URL+"/api/invoices/1/pdf", "")
	if code != http.StatusOK {
		t.Fatalf("pdf: %d", code)
	}
	code, body = call(t, c, http.MethodGet, srv.URL+"/api/invoices/42", "")
	if code != http.StatusNotFound || !strings.Contains(body, `"message":"Não encontrado"`) {
		t.Fatalf("missing invoice: %d %s", code, body)
	}

	code, body = call(t, c, http.MethodGet, srv.URL+"/api/invoices/42?lang=en", "")
	if code != http.StatusNotFound || !strings.Contains(body, `"message":"Not found"`) {
		t.Fatalf("english message: %d %s", code, body)
	}

	code, _ = call(t, c, http.MethodDelete, srv.URL+"/api/proposals/1", "")
	if code != http.StatusOK {
		t.Fatalf("delete proposal: %d", code)
	}

	code, _ = call(t, c, http.MethodPost, srv.URL+"/api/auth/logout", "")
	if code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	code, _ = call(t, c, http.MethodGet, srv.URL+"/api/invoices", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("after logout: %d", code)
	}

	code, body = call(t, c, http.MethodGet, srv.URL+"/metrics", "")
	if code != http.StatusOK || !strings.Contains(body, `crm_documents_total{kind="proposal",op="create"} 1`) {
		t.Fatalf("metrics: %d", code)
	}
	if !strings.Contains(body, `route="POST /api/invoices"`) {
		t.Fatalf("route label missing from metrics")
	}
}

func TestRecoverAnswersJSON(t *testing.T) {
	h := withRecover(logging.Discard(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), "internal_error") {
		t.Fatalf("expected 500 internal_error, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv, c := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	resp, err = c.Get(srv.URL + "/nowhere")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound || resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected 404 with generated id, got %d %q", resp.StatusCode, resp.Header.Get("X-Request-ID"))
	}
}
