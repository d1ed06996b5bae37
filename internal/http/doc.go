// Package http provides the HTTP transport used by the pipeline.
//
// Client exposes exactly the three fetch capabilities the core consumes:
//
//	html, err := client.GetString(ctx, url, headers)      // extractor (follows redirects)
//	target, err := client.ResolveRedirect(ctx, shortURL)  // resolver (single hop, no follow)
//	stream, err := client.Stream(ctx, assetURL, headers)  // download manager
//
// Stream intentionally returns non-2xx responses instead of erroring; status
// handling policy belongs to the caller.
package http
