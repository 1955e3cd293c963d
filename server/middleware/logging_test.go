package middleware

import "testing"

func TestRedactPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/api/folders/root", "/api/folders/root"},
		{"/api/download/eyJpZCI6IjEifQ.sig/a.pdf", "/api/download/eyJpZC***/a.pdf"},
		{"/api/download/abc", "/api/download/***/"},
	}
	for _, tc := range tests {
		if got := redactPath(tc.in); got != tc.want {
			t.Errorf("redactPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/api/folders/abc", "/api/folders"},
		{"/api/download/t/name.pdf", "/api/download"},
		{"/api/auth", "/api/auth"},
		{"/health", "/health"},
		{"/favicon.ico", "other"},
	}
	for _, tc := range tests {
		if got := routeLabel(tc.in); got != tc.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
