package gateway

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/drivegate/auth/capability"
	"github.com/kbukum/drivegate/auth/session"
	"github.com/kbukum/drivegate/drive"
	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/proxy"
	"github.com/kbukum/drivegate/resilience"
	"github.com/kbukum/drivegate/server/middleware"
)

// maxLoginBody bounds the password request body.
const maxLoginBody = "4KB"

// Gateway owns the request handlers and the objects they share: the Drive
// client with its credential cache, both token codecs, the password gate,
// the download proxy and the login rate limiter.
type Gateway struct {
	cfg          *Config
	drive        *drive.Client
	capabilities *capability.Codec
	sessions     *session.Codec
	gate         *session.Gate
	proxy        *proxy.Proxy
	loginLimiter *resilience.KeyedRateLimiter
	log          *logger.Logger
	metrics      *observability.Metrics
}

// Option configures a Gateway.
type Option func(*options)

type options struct {
	metrics *observability.Metrics
	now     func() time.Time
}

// WithMetrics records on m instead of the default instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the clock used by the codecs, the credential cache
// and the login limiter.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New wires a Gateway from cfg. cfg must have defaults applied.
func New(cfg *Config, opts ...Option) (*Gateway, error) {
	o := options{metrics: observability.DefaultMetrics(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	creds, err := drive.NewCredentialCache(cfg.Drive,
		drive.WithClock(o.now),
		drive.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}
	client, err := drive.NewClient(cfg.Drive, creds, drive.WithClientMetrics(o.metrics))
	if err != nil {
		return nil, err
	}

	capabilities := capability.NewCodec(cfg.Auth.CapabilitySecret,
		capability.WithTTL(cfg.Auth.CapabilityTTL),
		capability.WithClock(o.now),
	)
	sessions := session.NewCodec(cfg.Auth.SessionSecret, session.WithClock(o.now))

	log := logger.Get("gateway")
	limiter := resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{
		Name:  "login",
		Rate:  float64(cfg.Auth.LoginRate) / 60,
		Burst: cfg.Auth.LoginBurst,
		Now:   o.now,
		OnLimit: func(name string) {
			log.Warn("Login rate limit reached", logger.Fields("limiter", name))
		},
	})

	return &Gateway{
		cfg:          cfg,
		drive:        client,
		capabilities: capabilities,
		sessions:     sessions,
		gate:         session.NewGate(sessions, cfg.Auth.Password, cfg.Auth.PasswordHash),
		proxy:        proxy.New(capabilities, client, proxy.WithMetrics(o.metrics)),
		loginLimiter: limiter,
		log:          log,
		metrics:      o.metrics,
	}, nil
}

// Drive returns the Drive client.
func (g *Gateway) Drive() *drive.Client {
	return g.drive
}

// RegisterRoutes mounts the API on r.
func (g *Gateway) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")

	api.POST("/auth",
		middleware.RateLimit(g.loginLimiter, middleware.IPBasedKey),
		middleware.GinBodySizeLimit(maxLoginBody),
		g.login,
	)
	api.POST("/logout", g.logout)

	authed := api.Group("", middleware.RequireSession(g.sessions, session.CookieName))
	authed.GET("/folders/:folderId", g.listFolder)
	authed.GET("/files/:fileId", g.fileMetadata)

	api.GET("/download/:token/*filename", g.download)
}

// RunLimiterPruner drops idle login buckets every interval until ctx ends.
func (g *Gateway) RunLimiterPruner(ctx context.Context, interval time.Duration) {
	g.loginLimiter.RunPruner(ctx, interval)
}
