// Package auth holds the gateway's authentication settings and the
// TokenValidator contract used by middleware.
//
// Subpackages:
//
//   - auth/capability: stateless HMAC download capabilities bound to one object
//   - auth/session:    HS256 session tokens, the auth_token cookie and the password Gate
//   - auth/jwt:        generic HMAC JWT service backing the session codec
//   - auth/password:   plain and bcrypt / argon2id password checks
package auth
