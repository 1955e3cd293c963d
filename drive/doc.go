// Package drive is the gateway's upstream: a single-slot OAuth credential
// cache and a small Drive v3 client built on httpclient.
//
// The cache exchanges a long-lived refresh token for short-lived access
// tokens at the OAuth token endpoint and reuses one until RefreshSkew before
// its expiry. The client lists folder children, reads object metadata and
// opens media downloads, forwarding Range. Non-2xx answers become
// *UpstreamError; nothing is retried.
//
//	creds, _ := drive.NewCredentialCache(cfg)
//	client, _ := drive.NewClient(cfg, creds)
//	page, err := client.ListChildren(ctx, "root", "")
package drive
