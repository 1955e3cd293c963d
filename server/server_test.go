package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/drivegate/component"
	apperrors "github.com/kbukum/drivegate/errors"
	"github.com/kbukum/drivegate/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1", Port: 0}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return New(cfg, logger.NewDefault("test"))
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.Host != "0.0.0.0" {
		t.Errorf("unexpected address defaults: %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.WriteTimeout != 0 {
		t.Errorf("write timeout must stay disabled for streaming, got %v", cfg.WriteTimeout)
	}
	if cfg.MaxBodySize != "1MB" {
		t.Errorf("unexpected body size %q", cfg.MaxBodySize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"port", Config{Port: 70000}},
		{"read timeout", Config{ReadTimeout: -1}},
		{"write timeout", Config{WriteTimeout: -1}},
		{"shutdown timeout", Config{ShutdownTimeout: -1}},
		{"body size", Config{MaxBodySize: "big"}},
		{"trusted proxy", Config{TrustedProxies: []string{"10.0.0.0/8", "load-balancer"}}},
		{"trusted proxy mask", Config{TrustedProxies: []string{"10.0.0.0/33"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigAcceptsTrustedProxies(t *testing.T) {
	cfg := Config{TrustedProxies: []string{"10.0.0.1", "172.16.0.0/12", "::1"}}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		want    string
	}{
		{"forwarding ignored by default", nil, "192.0.2.1"},
		{"trusted proxy", []string{"192.0.2.0/24"}, "203.0.113.7"},
		{"untrusted proxy", []string{"10.0.0.1"}, "192.0.2.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{TrustedProxies: tc.trusted}
			cfg.ApplyDefaults()
			s := New(cfg, logger.NewDefault("test"))
			var got string
			s.GinEngine().GET("/ip", func(c *gin.Context) { got = c.ClientIP() })

			r := httptest.NewRequest(http.MethodGet, "/ip", http.NoBody)
			r.Header.Set("X-Forwarded-For", "203.0.113.7")
			s.Handler().ServeHTTP(httptest.NewRecorder(), r)
			if got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHandlerAppliesMiddleware(t *testing.T) {
	s := testServer(t)
	s.ApplyDefaults("drivegate", nil, nil)
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/boom", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected recovered 500, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected request id header")
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/info", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /info 200, got %d", rr.Code)
	}
}

func TestStartStop(t *testing.T) {
	s := testServer(t)
	reg := component.NewRegistry()
	sc := NewComponent(s)
	if err := reg.Register(sc); err != nil {
		t.Fatal(err)
	}
	s.ApplyDefaults("drivegate", reg, nil)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := reg.StartAll(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/health", s.Addr()))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status     string             `json:"status"`
		Components []component.Health `json:"components"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "healthy" || len(body.Components) != 1 {
		t.Errorf("unexpected health body %+v", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := reg.StopAll(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if sc.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy after stop")
	}
}

func TestDescribe(t *testing.T) {
	s := testServer(t)
	d := NewComponent(s).Describe()
	if d.Type != "server" || d.Details != "127.0.0.1:0 h2c write_timeout=off" {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want apperrors.ErrorCode
	}{
		{"unauthenticated", apperrors.Unauthenticated(), http.StatusUnauthorized, apperrors.ErrCodeUnauthenticated},
		{"upstream", apperrors.ExternalServiceError("drive", fmt.Errorf("500")), http.StatusBadGateway, apperrors.ErrCodeExternalService},
		{"config", apperrors.Configuration("session secret"), http.StatusInternalServerError, apperrors.ErrCodeConfiguration},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tc.err)

			if rr.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rr.Code)
			}
			var resp apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error.Code != tc.want {
				t.Errorf("expected %s, got %s", tc.want, resp.Error.Code)
			}
		})
	}
}

func TestRespondWithErrorCarriesRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Writer.Header().Set("X-Request-Id", "6f1c3f0e-1d43-4a4b-9d5e-0d6a2b9f1e10")
	RespondWithError(c, apperrors.Unauthenticated())

	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.RequestID != "6f1c3f0e-1d43-4a4b-9d5e-0d6a2b9f1e10" {
		t.Errorf("unexpected request id %q", resp.Error.RequestID)
	}
}

func TestRespondOK(t *testing.T) {
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	RespondOK(c, gin.H{"success": true})
	if rr.Code != http.StatusOK || rr.Body.String() != `{"success":true}` {
		t.Errorf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
}
