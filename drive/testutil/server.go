package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/drivegate/drive"
)

// Credentials accepted by the fake token endpoint.
const (
	ClientID     = "client-id-test"
	ClientSecret = "client-secret-test"
	RefreshToken = "refresh-token-test"
)

var parentsQuery = regexp.MustCompile(`^'((?:[^'\\]|\\.)*)' in parents and trashed = false$`)

// Object is a fake Drive object.
type Object struct {
	drive.File
	Parent  string
	Content []byte
	ETag    string
}

// Server fakes the OAuth token endpoint and the Drive v3 files API on one
// httptest server. Zero-valued status fields mean "behave normally".
type Server struct {
	*httptest.Server

	TokenCalls    atomic.Int64
	ListCalls     atomic.Int64
	MetadataCalls atomic.Int64
	DownloadCalls atomic.Int64

	mu             sync.Mutex
	validTokens    map[string]bool
	expiresIn      int64
	tokenStatus    int
	listStatus     int
	metadataStatus int
	downloadStatus int
	objects        map[string]Object
	lastListQuery  url.Values
	lastRange      string
	tokenSeq       int
}

// NewServer starts a fake with access tokens valid for an hour.
func NewServer() *Server {
	s := &Server{
		expiresIn:   3600,
		objects:     make(map[string]Object),
		validTokens: make(map[string]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", s.handleToken)
	mux.HandleFunc("/drive/v3/files", s.handleList)
	mux.HandleFunc("/drive/v3/files/", s.handleFile)
	s.Server = httptest.NewServer(mux)
	return s
}

// Config returns a drive.Config pointing at the fake.
func (s *Server) Config() drive.Config {
	return drive.Config{
		ClientID:     ClientID,
		ClientSecret: ClientSecret,
		RefreshToken: RefreshToken,
		TokenURL:     s.URL + "/token",
		BaseURL:      s.URL + "/drive/v3",
	}
}

// AddObject stores o, replacing any object with the same id.
func (s *Server) AddObject(o Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[o.ID] = o
}

// SetExpiresIn sets expires_in for subsequent token responses.
func (s *Server) SetExpiresIn(seconds int64) {
	s.mu.Lock()
	s.expiresIn = seconds
	s.mu.Unlock()
}

// FailToken makes the token endpoint answer status. 0 restores it.
func (s *Server) FailToken(status int) { s.setStatus(&s.tokenStatus, status) }

// FailList makes listing answer status. 0 restores it.
func (s *Server) FailList(status int) { s.setStatus(&s.listStatus, status) }

// FailMetadata makes metadata answer status. 0 restores it.
func (s *Server) FailMetadata(status int) { s.setStatus(&s.metadataStatus, status) }

// FailDownload makes media downloads answer status. 0 restores it.
func (s *Server) FailDownload(status int) { s.setStatus(&s.downloadStatus, status) }

// RevokeAccessTokens makes every issued access token unacceptable, as if
// they had been revoked upstream.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	s.validTokens = make(map[string]bool)
	s.mu.Unlock()
}

// LastListQuery returns the query of the most recent list call.
func (s *Server) LastListQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastListQuery
}

// LastRange returns the Range header of the most recent download.
func (s *Server) LastRange() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRange
}

func (s *Server) setStatus(field *int, status int) {
	s.mu.Lock()
	*field = status
	s.mu.Unlock()
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.TokenCalls.Add(1)
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokenStatus != 0 {
		writeError(w, s.tokenStatus, "invalid_grant")
		return
	}
	if r.PostForm.Get("grant_type") != "refresh_token" ||
		r.PostForm.Get("client_id") != ClientID ||
		r.PostForm.Get("client_secret") != ClientSecret ||
		r.PostForm.Get("refresh_token") != RefreshToken {
		writeError(w, http.StatusBadRequest, "invalid_grant")
		return
	}
	s.tokenSeq++
	token := fmt.Sprintf("ya29.fake-%d", s.tokenSeq)
	s.validTokens[token] = true
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"expires_in":   s.expiresIn,
		"token_type":   "Bearer",
	})
}

func (s *Server) authorized(r *http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && s.validTokens[token]
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.ListCalls.Add(1)
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	q := r.URL.Query()

	s.mu.Lock()
	s.lastListQuery = q
	status := s.listStatus
	var children []drive.File
	m := parentsQuery.FindStringSubmatch(q.Get("q"))
	if m != nil {
		parent := unescapeQuery(m[1])
		for _, o := range s.objects {
			if o.Parent == parent {
				children = append(children, o.File)
			}
		}
	}
	s.mu.Unlock()

	if status != 0 {
		writeError(w, status, "backendError")
		return
	}
	if m == nil {
		writeError(w, http.StatusBadRequest, "invalid query")
		return
	}

	sort.Slice(children, func(i, j int) bool {
		fi, fj := children[i].IsFolder(), children[j].IsFolder()
		if fi != fj {
			return fi
		}
		return children[i].Name < children[j].Name
	})

	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 {
		pageSize = 100
	}
	offset, _ := strconv.Atoi(q.Get("pageToken"))
	if offset > len(children) {
		offset = len(children)
	}
	end := offset + pageSize
	resp := map[string]any{}
	if end < len(children) {
		resp["nextPageToken"] = strconv.Itoa(end)
	} else {
		end = len(children)
	}
	page := make([]drive.File, 0, end-offset)
	page = append(page, children[offset:end]...)
	resp["files"] = page
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/drive/v3/files/")
	media := r.URL.Query().Get("alt") == "media"
	if media {
		s.DownloadCalls.Add(1)
	} else {
		s.MetadataCalls.Add(1)
	}
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	s.mu.Lock()
	o, ok := s.objects[id]
	status := s.metadataStatus
	if media {
		status = s.downloadStatus
		s.lastRange = r.Header.Get("Range")
	}
	s.mu.Unlock()

	if status != 0 {
		writeError(w, status, "backendError")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}
	if !media {
		writeJSON(w, http.StatusOK, drive.File{ID: o.ID, Name: o.Name, MimeType: o.MimeType, Size: o.Size})
		return
	}

	w.Header().Set("Content-Type", o.MimeType)
	w.Header().Set("Cache-Control", "private, max-age=0")
	if o.ETag != "" {
		w.Header().Set("ETag", o.ETag)
	}
	modified, _ := time.Parse(time.RFC3339, o.ModifiedTime)
	http.ServeContent(w, r, "", modified, bytes.NewReader(o.Content))
}

func unescapeQuery(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": reason},
	})
}
