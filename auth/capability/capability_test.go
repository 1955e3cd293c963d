package capability

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestRoundTrip(t *testing.T) {
	tok, err := Issue("1AbC-xyz_9", "k1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	id, ok := Validate(tok, "k1")
	if !ok || id != "1AbC-xyz_9" {
		t.Errorf("Validate = %q, %v", id, ok)
	}
}

func TestWrongSecret(t *testing.T) {
	tok, _ := Issue("abc", "k1", time.Hour)
	if _, ok := Validate(tok, "k2"); ok {
		t.Error("token must not validate under another secret")
	}
}

func TestExpiry(t *testing.T) {
	now := epoch
	c := NewCodec("k1", WithTTL(time.Minute), WithClock(fixedClock(&now)))

	tok, err := c.Issue("abc")
	if err != nil {
		t.Fatal(err)
	}

	now = epoch.Add(time.Minute)
	if _, ok := c.Validate(tok); !ok {
		t.Error("token must be valid at exactly exp")
	}

	now = epoch.Add(time.Minute + time.Millisecond)
	if _, ok := c.Validate(tok); ok {
		t.Error("token must be invalid one millisecond after exp")
	}
}

func TestPastExpiryIsInvalid(t *testing.T) {
	c := NewCodec("k1")
	tok, _ := c.IssueAt("abc", time.Now().Add(-time.Second))
	if _, ok := c.Validate(tok); ok {
		t.Error("token issued with past exp must be invalid")
	}
}

func TestSignatureMutation(t *testing.T) {
	tok, _ := Issue("abc", "k1", time.Hour)
	seg, sig, _ := strings.Cut(tok, Separator)

	for i := range sig {
		mutated := []byte(sig)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		if _, ok := Validate(seg+Separator+string(mutated), "k1"); ok {
			t.Fatalf("mutating signature byte %d still validated", i)
		}
	}
}

func TestPayloadTamper(t *testing.T) {
	tok, _ := Issue("abc", "k1", time.Hour)
	_, sig, _ := strings.Cut(tok, Separator)

	raw, _ := json.Marshal(payload{ID: "other", Exp: time.Now().Add(time.Hour).UnixMilli()})
	forged := encoding.EncodeToString(raw) + Separator + sig
	if _, ok := Validate(forged, "k1"); ok {
		t.Error("swapped payload must not validate")
	}
}

func TestMalformed(t *testing.T) {
	c := NewCodec("k1")
	good, _ := c.Issue("abc")
	seg, _, _ := strings.Cut(good, Separator)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", seg},
		{"empty signature", seg + Separator},
		{"empty payload", Separator + "sig"},
		{"extra segment", good + Separator + "x"},
		{"padded base64", seg + "==" + Separator + "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := c.Validate(tc.token); ok {
				t.Errorf("Validate(%q) should fail", tc.token)
			}
		})
	}
}

func TestSignedButUndecodablePayload(t *testing.T) {
	c := NewCodec("k1")
	for _, seg := range []string{"!!!", encoding.EncodeToString([]byte("not json")), encoding.EncodeToString([]byte(`{"exp":99999999999999}`))} {
		tok := seg + Separator + c.sign(seg)
		if _, ok := c.Validate(tok); ok {
			t.Errorf("payload %q should be rejected", seg)
		}
	}
}

func TestFormat(t *testing.T) {
	now := epoch
	c := NewCodec("k1", WithClock(fixedClock(&now)))
	tok, _ := c.Issue("abc")

	if strings.ContainsAny(tok, "+/=") {
		t.Errorf("token must be unpadded url-safe base64: %q", tok)
	}
	seg, _, _ := strings.Cut(tok, Separator)
	raw, err := encoding.DecodeString(seg)
	if err != nil {
		t.Fatal(err)
	}
	var p map[string]any
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatal(err)
	}
	if p["id"] != "abc" {
		t.Errorf("id = %v", p["id"])
	}
	if exp := int64(p["exp"].(float64)); exp != epoch.Add(DefaultTTL).UnixMilli() {
		t.Errorf("exp = %d, want default TTL in millis", exp)
	}
}

func TestNoSecret(t *testing.T) {
	c := NewCodec("")
	if c.Configured() {
		t.Error("empty secret must not be configured")
	}
	if _, err := c.Issue("abc"); err != ErrNoSecret {
		t.Errorf("expected ErrNoSecret, got %v", err)
	}
	if _, ok := c.Validate("a.b"); ok {
		t.Error("unconfigured codec must reject everything")
	}
}

func TestDefaultTTL(t *testing.T) {
	if NewCodec("k", WithTTL(0)).TTL() != DefaultTTL {
		t.Error("zero ttl should keep the default")
	}
	if NewCodec("k", WithTTL(-time.Hour)).TTL() != DefaultTTL {
		t.Error("negative ttl should keep the default")
	}
}
