package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/drivegate/drive"
	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/util"
)

// Plain-text bodies for failed downloads.
const (
	MsgConfigError  = "Server Config Error"
	MsgInvalidLink  = "Expired or Invalid Link"
	MsgDriveFailure = "File Not Found or Drive Error"
)

// DefaultBufferSize is the copy chunk size.
const DefaultBufferSize = 32 * 1024

// relayHeaders are copied from the upstream media response.
var relayHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Range",
	"Accept-Ranges",
	"ETag",
	"Last-Modified",
	"Cache-Control",
}

// TokenValidator resolves a capability token to an object id.
// *capability.Codec implements it.
type TokenValidator interface {
	Configured() bool
	Validate(token string) (objectID string, ok bool)
}

// Downloader opens an upstream media stream. *drive.Client implements it.
type Downloader interface {
	OpenDownload(ctx context.Context, objectID, rangeHeader string) (*drive.Download, error)
}

// Proxy serves capability-gated downloads.
type Proxy struct {
	tokens  TokenValidator
	drive   Downloader
	log     *logger.Logger
	metrics *observability.Metrics
	bufSize int
}

// Option configures a Proxy.
type Option func(*Proxy)

// WithMetrics records rejected tokens and relayed bytes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Proxy) { p.metrics = m }
}

// WithBufferSize sets the copy chunk size. Values <= 0 are ignored.
func WithBufferSize(n int) Option {
	return func(p *Proxy) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Proxy) { p.log = l }
}

// New creates a Proxy.
func New(tokens TokenValidator, d Downloader, opts ...Option) *Proxy {
	p := &Proxy{
		tokens:  tokens,
		drive:   d,
		log:     logger.Get("proxy"),
		metrics: observability.DefaultMetrics(),
		bufSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ServeDownload validates token and streams the object it names to w.
// filename is used for Content-Disposition only. A client disconnect
// cancels r's context, which aborts the upstream read.
func (p *Proxy) ServeDownload(w http.ResponseWriter, r *http.Request, token, filename string) {
	ctx, span := observability.StartSpan(r.Context(), observability.SpanProxyDownload)
	var spanErr error
	defer func() { observability.EndSpan(span, spanErr) }()
	log := p.log.WithContext(ctx)

	w.Header().Set("Access-Control-Allow-Origin", "*")

	if !p.tokens.Configured() {
		log.Error("Capability secret not configured")
		spanErr = errors.New("capability secret not configured")
		writeText(w, http.StatusInternalServerError, MsgConfigError)
		return
	}

	objectID, ok := p.tokens.Validate(token)
	if !ok {
		p.metrics.RecordCapabilityRejected(ctx)
		log.Debug("Capability rejected", logger.Fields("token", util.MaskToken(token)))
		writeText(w, http.StatusUnauthorized, MsgInvalidLink)
		return
	}
	span.SetAttributes(attribute.String(observability.AttrObjectID, objectID))

	rangeHeader := r.Header.Get("Range")
	d, err := p.drive.OpenDownload(ctx, objectID, rangeHeader)
	if err != nil {
		spanErr = err
		log.Warn("Download failed", logger.MergeWithError(logger.Fields(
			logger.FieldObjectID, objectID,
			logger.FieldRange, rangeHeader,
		), err))
		writeText(w, http.StatusNotFound, MsgDriveFailure)
		return
	}
	defer d.Close()

	h := w.Header()
	for _, key := range relayHeaders {
		for _, v := range d.Header.Values(key) {
			h.Add(key, v)
		}
	}
	h.Set("Content-Disposition", `inline; filename="`+util.DisplayFilename(filename)+`"`)
	w.WriteHeader(d.StatusCode)

	start := time.Now()
	n, err := p.copy(w, d.Body)
	p.metrics.RecordProxyBytes(ctx, n, d.StatusCode)
	span.SetAttributes(
		attribute.Int(observability.AttrStatusCode, d.StatusCode),
		attribute.Int64(observability.AttrBytes, n),
	)

	fields := logger.Fields(
		logger.FieldObjectID, objectID,
		logger.FieldBytes, n,
		logger.FieldStatus, d.StatusCode,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	)
	switch {
	case err == nil:
		log.Debug("Download relayed", fields)
	case ctx.Err() != nil:
		log.Debug("Download aborted by client", fields)
	default:
		spanErr = err
		log.Warn("Download interrupted", logger.MergeWithError(fields, err))
	}
}

func (p *Proxy) copy(w http.ResponseWriter, body io.Reader) (int64, error) {
	buf := make([]byte, p.bufSize)
	return io.CopyBuffer(&flushWriter{w: w, rc: http.NewResponseController(w)}, body, buf)
}

// flushWriter flushes after every chunk. It hides io.ReaderFrom on the
// underlying writer so CopyBuffer uses the fixed-size buffer.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f *flushWriter) Write(b []byte) (int, error) {
	n, err := f.w.Write(b)
	if err != nil {
		return n, err
	}
	if ferr := f.rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
		return n, ferr
	}
	return n, nil
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
