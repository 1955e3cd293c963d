// Package proxy streams Drive objects to unauthenticated callers that hold a
// capability token.
//
// The token alone selects the object; the filename segment of the URL only
// names the download. Responses are relayed as they arrive: the upstream
// status (200 or 206) and the caching and range headers pass through, and the
// body is copied in fixed-size chunks with a flush after each one so that
// seeking in a media player works without buffering the object.
//
// Failures answer with short plain-text bodies. The reason for an upstream
// failure is logged, never sent.
package proxy
