package errors

// Outcome tags the result of a gated operation so the HTTP boundary can pick
// a status code without inspecting error strings.
type Outcome int

const (
	// OutcomeOK means the operation succeeded.
	OutcomeOK Outcome = iota
	// OutcomeUnauthenticated covers a missing or invalid session, a wrong
	// password, and an invalid or expired capability token.
	OutcomeUnauthenticated
	// OutcomeUpstreamFailure covers any failure of the storage service or its
	// token endpoint, including transport errors.
	OutcomeUpstreamFailure
	// OutcomeConfigError means a required secret or credential is absent.
	OutcomeConfigError
	// OutcomeInvalidInput covers malformed request bodies and parameters.
	OutcomeInvalidInput
	// OutcomeRateLimited means the client exceeded its allowance.
	OutcomeRateLimited
	// OutcomeInternal is anything else.
	OutcomeInternal
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeUpstreamFailure:
		return "upstream_failure"
	case OutcomeConfigError:
		return "config_error"
	case OutcomeInvalidInput:
		return "invalid_input"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Classify maps an error onto its Outcome. A nil error is OutcomeOK and any
// error that is not an *AppError is OutcomeInternal.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return OutcomeInternal
	}
	switch appErr.Code {
	case ErrCodeUnauthorized, ErrCodeUnauthenticated:
		return OutcomeUnauthenticated
	case ErrCodeExternalService, ErrCodeTimeout:
		return OutcomeUpstreamFailure
	case ErrCodeConfiguration:
		return OutcomeConfigError
	case ErrCodeInvalidInput:
		return OutcomeInvalidInput
	case ErrCodeRateLimited:
		return OutcomeRateLimited
	default:
		return OutcomeInternal
	}
}
