package gateway_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/drivegate/auth/session"
	"github.com/kbukum/drivegate/component"
	"github.com/kbukum/drivegate/drive"
	"github.com/kbukum/drivegate/drive/testutil"
	"github.com/kbukum/drivegate/errors"
	"github.com/kbukum/drivegate/gateway"
	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/server"
)

const password = "secret123"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	t       *testing.T
	fake    *testutil.Server
	clock   *clock
	handler http.Handler
	gw      *gateway.Gateway
}

func newHarness(t *testing.T, mutate func(*gateway.Config)) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := testutil.NewServer()
	t.Cleanup(fake.Close)
	fake.AddObject(testutil.Object{Parent: "root", File: drive.File{ID: "docs", Name: "Docs", MimeType: drive.FolderMimeType}})
	fake.AddObject(testutil.Object{
		Parent:  "root",
		File:    drive.File{ID: "movie-1", Name: "Holiday 2024.mp4", MimeType: "video/mp4", Size: "1000"},
		Content: []byte(strings.Repeat("x", 1000)),
	})
	fake.AddObject(testutil.Object{
		Parent:  "docs",
		File:    drive.File{ID: "readme", Name: "readme.txt", MimeType: "text/plain", Size: "5"},
		Content: []byte("hello"),
	})

	cfg := &gateway.Config{}
	cfg.Drive = fake.Config()
	cfg.Auth.CapabilitySecret = "capability-secret"
	cfg.Auth.SessionSecret = "session-secret"
	cfg.Auth.Password = password
	if mutate != nil {
		mutate(cfg)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	clk := &clock{now: time.Now()}
	gw, err := gateway.New(cfg, gateway.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	registry := component.NewRegistry()
	_ = registry.Register(drive.NewComponent(gw.Drive()))
	_ = registry.Register(gw.Component())

	srv := server.New(cfg.Server, logger.NewDefault("gateway-test"))
	srv.ApplyDefaults(cfg.Name, registry, nil)
	gw.RegisterRoutes(srv.GinEngine())

	return &harness{t: t, fake: fake, clock: clk, handler: srv.Handler(), gw: gw}
}

func (h *harness) do(method, path, body string, cookie *http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	h.t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		r.AddCookie(cookie)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, r)
	return w
}

func (h *harness) login() *http.Cookie {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/auth", `{"password":"`+password+`"}`, nil, nil)
	if w.Code != http.StatusOK {
		h.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	h.t.Fatal("login: no session cookie")
	return nil
}

type listing struct {
	Files         []drive.File `json:"files"`
	NextPageToken string       `json:"nextPageToken"`
}

func (h *harness) list(cookie *http.Cookie, folder string) listing {
	h.t.Helper()
	w := h.do(http.MethodGet, "/api/folders/"+folder, "", cookie, nil)
	if w.Code != http.StatusOK {
		h.t.Fatalf("list %s: %d %s", folder, w.Code, w.Body.String())
	}
	var l listing
	if err := json.Unmarshal(w.Body.Bytes(), &l); err != nil {
		h.t.Fatalf("decode listing: %v", err)
	}
	return l
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) errors.ErrorCode {
	t.Helper()
	var resp errors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error.Code
}

func downloadURL(t *testing.T, l listing, id string) string {
	t.Helper()
	for _, f := range l.Files {
		if f.ID == id {
			return f.DownloadURL
		}
	}
	t.Fatalf("object %s not listed", id)
	return ""
}

// The right password yields the session cookie.
func TestLoginSetsSessionCookie(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodPost, "/api/auth", `{"password":"secret123"}`, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if strings.TrimSpace(w.Body.String()) != `{"success":true}` {
		t.Errorf("body = %s", w.Body.String())
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "auth_token" || c.Value == "" {
		t.Errorf("unexpected cookie %+v", c)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" || c.MaxAge != 604800 {
		t.Errorf("unexpected cookie attributes %+v", c)
	}
	if !session.Verify(c.Value, "session-secret") {
		t.Error("cookie does not carry a valid session token")
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		mutate   func(*gateway.Config)
		wantCode int
		wantErr  errors.ErrorCode
	}{
		{"wrong password", `{"password":"nope"}`, nil, http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{"empty password", `{"password":""}`, nil, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"not json", `password=secret123`, nil, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"no password configured", `{"password":"secret123"}`, func(c *gateway.Config) { c.Auth.Password = "" }, http.StatusInternalServerError, errors.ErrCodeConfiguration},
		{"no session secret", `{"password":"secret123"}`, func(c *gateway.Config) { c.Auth.SessionSecret = "" }, http.StatusInternalServerError, errors.ErrCodeConfiguration},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.mutate)
			w := h.do(http.MethodPost, "/api/auth", tc.body, nil, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantCode, w.Body.String())
			}
			if got := errorCode(t, w); got != tc.wantErr {
				t.Errorf("code = %s, want %s", got, tc.wantErr)
			}
			if len(w.Result().Cookies()) != 0 {
				t.Error("no cookie expected on failure")
			}
		})
	}
}

// attempt posts a login from remoteAddr, optionally through a proxy header.
func (h *harness) attempt(remoteAddr, forwardedFor, pw string) *httptest.ResponseRecorder {
	h.t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{"password":"`+pw+`"}`))
	r.Header.Set("Content-Type", "application/json")
	r.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		r.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, r)
	return w
}

func TestLoginRateLimited(t *testing.T) {
	h := newHarness(t, func(c *gateway.Config) {
		c.Auth.LoginRate = 1
		c.Auth.LoginBurst = 2
	})

	for i := 0; i < 2; i++ {
		if w := h.attempt("198.51.100.4:5000", "", "wrong"); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status %d", i, w.Code)
		}
	}
	w := h.attempt("198.51.100.4:5001", "", password)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After")
	}
	if got := errorCode(t, w); got != errors.ErrCodeRateLimited {
		t.Errorf("code = %s", got)
	}

	if other := h.attempt("198.51.100.5:5000", "", password); other.Code != http.StatusOK {
		t.Errorf("another client must have its own bucket, got %d", other.Code)
	}
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	h := newHarness(t, func(c *gateway.Config) {
		c.Auth.LoginRate = 1
		c.Auth.LoginBurst = 2
	})

	spoofed := []string{"203.0.113.1", "203.0.113.2", "203.0.113.3", "203.0.113.4"}
	var last *httptest.ResponseRecorder
	for _, xff := range spoofed {
		last = h.attempt("198.51.100.4:5000", xff, "wrong")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("rotating X-Forwarded-For must not reset the bucket, got %d", last.Code)
	}
}

func TestLoginRateLimitBehindTrustedProxy(t *testing.T) {
	h := newHarness(t, func(c *gateway.Config) {
		c.Auth.LoginRate = 1
		c.Auth.LoginBurst = 2
		c.Server.TrustedProxies = []string{"10.0.0.0/8"}
	})

	for i := 0; i < 2; i++ {
		h.attempt("10.0.0.2:5000", "203.0.113.1", "wrong")
	}
	if w := h.attempt("10.0.0.2:5000", "203.0.113.1", password); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the forwarded client, got %d", w.Code)
	}
	if w := h.attempt("10.0.0.2:5000", "203.0.113.2", password); w.Code != http.StatusOK {
		t.Errorf("a different client behind the proxy has its own bucket, got %d", w.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodPost, "/api/logout", "", h.login(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring auth_token cookie, got %+v", cookies)
	}
}

// Listing without a session is refused before Drive is called.
func TestListingRequiresSession(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"garbage cookie", &http.Cookie{Name: session.CookieName, Value: "not-a-jwt"}},
		{"foreign signature", func() *http.Cookie {
			tok, _ := session.Issue("another-secret")
			return &http.Cookie{Name: session.CookieName, Value: tok}
		}()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := h.do(http.MethodGet, "/api/folders/root", "", tc.cookie, nil)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d", w.Code)
			}
			if got := errorCode(t, w); got != errors.ErrCodeUnauthenticated {
				t.Errorf("code = %s", got)
			}
		})
	}
	if n := h.fake.ListCalls.Load() + h.fake.TokenCalls.Load(); n != 0 {
		t.Errorf("expected no upstream calls, got %d", n)
	}
}

func TestSessionExpires(t *testing.T) {
	h := newHarness(t, nil)
	cookie := h.login()
	h.clock.Advance(7*24*time.Hour + time.Second)

	w := h.do(http.MethodGet, "/api/folders/root", "", cookie, nil)
	if w.Code != http.StatusUnauthorized || errorCode(t, w) != errors.ErrCodeUnauthenticated {
		t.Errorf("expected 401 UNAUTHENTICATED after expiry, got %d %s", w.Code, w.Body.String())
	}
}

func TestListingMintsDownloadLinks(t *testing.T) {
	h := newHarness(t, nil)
	l := h.list(h.login(), "root")

	if len(l.Files) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(l.Files))
	}
	if l.Files[0].ID != "docs" || l.Files[0].DownloadURL != "" {
		t.Errorf("expected the folder first without a link, got %+v", l.Files[0])
	}
	link := l.Files[1].DownloadURL
	if !strings.HasPrefix(link, "/api/download/") || !strings.HasSuffix(link, "/Holiday%202024.mp4") {
		t.Errorf("unexpected download url %q", link)
	}
	if q := h.fake.LastListQuery().Get("q"); q != "'root' in parents and trashed = false" {
		t.Errorf("unexpected q %q", q)
	}
}

func TestListingRootAlias(t *testing.T) {
	h := newHarness(t, func(c *gateway.Config) { c.Drive.RootID = "docs" })
	l := h.list(h.login(), "root")
	if len(l.Files) != 1 || l.Files[0].ID != "readme" {
		t.Errorf("expected the configured root's children, got %+v", l.Files)
	}
}

func TestListingPagination(t *testing.T) {
	h := newHarness(t, func(c *gateway.Config) { c.Drive.PageSize = 1 })
	cookie := h.login()

	first := h.list(cookie, "root")
	if len(first.Files) != 1 || first.NextPageToken == "" {
		t.Fatalf("unexpected first page %+v", first)
	}
	w := h.do(http.MethodGet, "/api/folders/root?pageToken="+first.NextPageToken, "", cookie, nil)
	var second listing
	_ = json.Unmarshal(w.Body.Bytes(), &second)
	if len(second.Files) != 1 || second.NextPageToken != "" || second.Files[0].ID == first.Files[0].ID {
		t.Errorf("unexpected second page %+v", second)
	}
}

func TestListingRejectsMalformedFolderID(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/api/folders/it's", "", h.login(), nil)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != errors.ErrCodeInvalidInput {
		t.Errorf("expected 400 INVALID_INPUT, got %d %s", w.Code, w.Body.String())
	}
	if h.fake.ListCalls.Load() != 0 {
		t.Error("Drive must not be called")
	}
}

// A Drive failure is reported as an upstream error, never as a
// session problem.
func TestListingUpstreamFailure(t *testing.T) {
	h := newHarness(t, nil)
	cookie := h.login()
	h.fake.FailList(http.StatusInternalServerError)

	w := h.do(http.MethodGet, "/api/folders/root", "", cookie, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	if got := errorCode(t, w); got != errors.ErrCodeExternalService {
		t.Errorf("code = %s", got)
	}
	if strings.Contains(w.Body.String(), "backendError") {
		t.Error("upstream detail leaked to the client")
	}
}

func TestListingMissingConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gateway.Config)
	}{
		{"capability secret", func(c *gateway.Config) { c.Auth.CapabilitySecret = "" }},
		{"drive refresh token", func(c *gateway.Config) { c.Drive.RefreshToken = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.mutate)
			w := h.do(http.MethodGet, "/api/folders/root", "", h.login(), nil)
			if w.Code != http.StatusInternalServerError || errorCode(t, w) != errors.ErrCodeConfiguration {
				t.Errorf("expected 500 CONFIGURATION_ERROR, got %d %s", w.Code, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "refresh_token") || strings.Contains(w.Body.String(), "secret") {
				t.Error("missing setting leaked to the client")
			}
		})
	}
}

func TestFileMetadata(t *testing.T) {
	h := newHarness(t, nil)
	cookie := h.login()

	w := h.do(http.MethodGet, "/api/files/movie-1", "", cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var f drive.File
	_ = json.Unmarshal(w.Body.Bytes(), &f)
	if f.Name != "Holiday 2024.mp4" || f.Size != "1000" || f.MimeType != "video/mp4" {
		t.Errorf("unexpected metadata %+v", f)
	}

	if w := h.do(http.MethodGet, "/api/files/unknown", "", cookie, nil); w.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for a Drive 404, got %d", w.Code)
	}
	if w := h.do(http.MethodGet, "/api/files/movie-1", "", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", w.Code)
	}
}

func TestDownloadFull(t *testing.T) {
	h := newHarness(t, nil)
	link := downloadURL(t, h.list(h.login(), "root"), "movie-1")

	w := h.do(http.MethodGet, link, "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 1000 {
		t.Errorf("expected 1000 bytes, got %d", w.Body.Len())
	}
	if got := w.Header().Get("Content-Disposition"); got != `inline; filename="Holiday 2024.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected ACAO *")
	}
}

// Byte ranges pass through for media seeking.
func TestDownloadRange(t *testing.T) {
	h := newHarness(t, nil)
	link := downloadURL(t, h.list(h.login(), "root"), "movie-1")

	w := h.do(http.MethodGet, link, "", nil, map[string]string{"Range": "bytes=0-99"})
	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 0-99/1000" {
		t.Errorf("Content-Range = %q", got)
	}
	if w.Body.Len() != 100 {
		t.Errorf("expected 100 bytes, got %d", w.Body.Len())
	}
}

// An expired link is refused without touching Drive.
func TestDownloadExpiredLink(t *testing.T) {
	h := newHarness(t, nil)
	link := downloadURL(t, h.list(h.login(), "root"), "movie-1")
	before := h.fake.DownloadCalls.Load()

	h.clock.Advance(24*time.Hour + time.Second)
	w := h.do(http.MethodGet, link, "", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "Expired or Invalid Link" {
		t.Errorf("body = %q", w.Body.String())
	}
	if h.fake.DownloadCalls.Load() != before {
		t.Error("Drive must not be called for an expired link")
	}
}

func TestDownloadFilenameDoesNotSelectObject(t *testing.T) {
	h := newHarness(t, nil)
	link := downloadURL(t, h.list(h.login(), "root"), "movie-1")
	renamed := link[:strings.LastIndex(link, "/")] + "/readme.txt"

	w := h.do(http.MethodGet, renamed, "", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() != 1000 {
		t.Errorf("expected the token's object, got %d with %d bytes", w.Code, w.Body.Len())
	}
}

func TestDownloadNameWithSlash(t *testing.T) {
	h := newHarness(t, nil)
	h.fake.AddObject(testutil.Object{
		Parent:  "root",
		File:    drive.File{ID: "report-1", Name: "Q1/Q2 report.pdf", MimeType: "application/pdf", Size: "3"},
		Content: []byte("pdf"),
	})
	link := downloadURL(t, h.list(h.login(), "root"), "report-1")
	if !strings.HasSuffix(link, "/Q1%2FQ2%20report.pdf") {
		t.Fatalf("unexpected link %q", link)
	}

	w := h.do(http.MethodGet, link, "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "pdf" {
		t.Errorf("body = %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != `inline; filename="Q1/Q2 report.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestDownloadDriveFailure(t *testing.T) {
	h := newHarness(t, nil)
	link := downloadURL(t, h.list(h.login(), "root"), "movie-1")
	h.fake.FailDownload(http.StatusServiceUnavailable)

	w := h.do(http.MethodGet, link, "", nil, nil)
	if w.Code != http.StatusNotFound || w.Body.String() != "File Not Found or Drive Error" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestHealthReportsDrive(t *testing.T) {
	h := newHarness(t, func(c *gateway.Config) { c.Drive.ClientSecret = "" })

	w := h.do(http.MethodGet, "/health", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Status     string             `json:"status"`
		Components []component.Health `json:"components"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Status != string(component.StatusDegraded) {
		t.Errorf("expected degraded overall, got %q", body.Status)
	}
	found := false
	for _, c := range body.Components {
		if c.Name == "drive" {
			found = true
			if c.Status != component.StatusDegraded {
				t.Errorf("drive status = %s", c.Status)
			}
		}
	}
	if !found {
		t.Error("drive component missing from health")
	}
}
