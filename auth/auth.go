package auth

// TokenValidator validates a token string and returns the parsed claims.
// Middleware depends on this interface rather than on a concrete codec.
//
// session.Codec implements it for session cookies.
type TokenValidator interface {
	ValidateToken(token string) (any, error)
}

// TokenValidatorFunc adapts an ordinary function to the TokenValidator interface.
type TokenValidatorFunc func(token string) (any, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(token string) (any, error) {
	return f(token)
}
