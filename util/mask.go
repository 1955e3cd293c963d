package util

// tokenPrefix is how much of a token is left readable in logs.
const tokenPrefix = 6

// MaskToken keeps the first few characters of a capability or session
// token so log lines can be correlated without making them replayable.
func MaskToken(token string) string {
	if len(token) <= tokenPrefix*2 {
		return "***"
	}
	return token[:tokenPrefix] + "***"
}
