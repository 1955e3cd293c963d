package session

import (
	"net/http"

	"github.com/kbukum/drivegate/auth/password"
	"github.com/kbukum/drivegate/errors"
)

// CookieName is the cookie carrying the session token.
const CookieName = "auth_token"

// Gate exchanges the shared access password for a session cookie and checks
// incoming requests for one.
type Gate struct {
	codec        *Codec
	password     string
	passwordHash string
	hasher       password.Hasher
}

// NewGate creates a Gate. When passwordHash is set it takes precedence and
// is verified with bcrypt or argon2id; otherwise plain is compared directly.
func NewGate(codec *Codec, plain, passwordHash string) *Gate {
	g := &Gate{codec: codec, password: plain, passwordHash: passwordHash}
	if passwordHash != "" {
		g.hasher = password.Detect(passwordHash)
	}
	return g
}

// Authenticate checks given against the configured password and returns the
// session cookie on success.
func (g *Gate) Authenticate(given string) (*http.Cookie, error) {
	if !g.codec.Configured() {
		return nil, errors.Configuration("session secret")
	}
	if err := g.check(given); err != nil {
		return nil, err
	}
	token, err := g.codec.Issue()
	if err != nil {
		return nil, err
	}
	return NewCookie(token), nil
}

func (g *Gate) check(given string) error {
	switch {
	case g.passwordHash != "":
		if g.hasher == nil {
			return errors.Configuration("access password hash format")
		}
		if err := g.hasher.Verify(given, g.passwordHash); err != nil {
			return errors.Unauthorized("Invalid password")
		}
		return nil
	case g.password != "":
		if !password.Equal(given, g.password) {
			return errors.Unauthorized("Invalid password")
		}
		return nil
	default:
		return errors.Configuration("access password")
	}
}

// Authorized returns nil if token is a valid session and an
// UNAUTHENTICATED error otherwise.
func (g *Gate) Authorized(token string) error {
	_, err := g.codec.ValidateToken(token)
	return err
}

// RequireSession reads the session cookie from r and validates it.
func (g *Gate) RequireSession(r *http.Request) error {
	if !g.codec.Configured() {
		return errors.Configuration("session secret")
	}
	c, err := r.Cookie(CookieName)
	if err != nil {
		return errors.Unauthenticated()
	}
	return g.Authorized(c.Value)
}

// NewCookie wraps a session token in the auth_token cookie.
func NewCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearCookie returns a cookie that deletes the session cookie.
func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
