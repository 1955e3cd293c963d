// Package httpclient is the outbound HTTP layer used to talk to Google's
// OAuth and Drive endpoints.
//
// Do buffers the whole response and is bounded by Config.Timeout. DoStream
// hands back the live body for proxying and is bounded only by
// Config.ResponseHeaderTimeout and the caller's context. Both classify
// non-2xx answers into *Error values that keep the status code and body.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://www.googleapis.com/drive/v3",
//	    Auth:    httpclient.BearerSourceAuth(credentials),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/files/" + id,
//	    Query:  url.Values{"fields": {"id,name"}},
//	})
//
// The client never retries.
package httpclient
