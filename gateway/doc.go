// Package gateway is the HTTP API of drivegate.
//
// Routes:
//
//	POST /api/auth                        password → session cookie (rate limited per IP)
//	POST /api/logout                      clears the session cookie
//	GET  /api/folders/:folderId           folder listing with download links (session)
//	GET  /api/files/:fileId               object metadata (session)
//	GET  /api/download/:token/:filename   capability-gated streaming download
//
// Handlers classify failures with errors.Classify and render them through
// server.RespondWithError, so a missing cookie is 401 UNAUTHENTICATED, an
// absent secret is 500 and a Drive failure is 502. Downloads are the
// exception: the proxy answers with plain text and maps every Drive failure
// to 404.
//
// Listing links are minted per request and carry the object id inside a
// signed capability token; the filename segment is display-only.
package gateway
