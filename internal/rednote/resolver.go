package rednote

import (
	"context"
	"regexp"
	"strings"

	httpx "github.com/askoura/rednote-downloader/internal/http"
	"github.com/askoura/rednote-downloader/internal/progress"
)

// Link patterns recognized by the resolver. Share links take priority over
// canonical links within a token; short links are expanded first.
var (
	canonicalPattern = regexp.MustCompile(`https?://www\.xiaohongshu\.com/explore/[a-z0-9]+`)
	sharePattern     = regexp.MustCompile(`https?://www\.xiaohongshu\.com/discovery/item/[a-z0-9]+`)
	shortPattern     = regexp.MustCompile(`https?://xhslink\.com/[A-Za-z0-9]+`)
)

// Resolver turns raw free text into zero or more canonical post URLs.
//
// Input is split on whitespace; each token is independently classified.
// Tokens matching the short-link pattern cost one non-following HTTP request
// to obtain the redirect target; everything else is pure pattern matching.
// Tokens matching nothing are dropped silently.
type Resolver struct {
	client     *httpx.Client
	onProgress progress.Func
}

// NewResolver creates a Resolver. The client is only used for short-link
// expansion; onProgress may be nil.
func NewResolver(client *httpx.Client, onProgress progress.Func) *Resolver {
	return &Resolver{client: client, onProgress: onProgress}
}

// Resolve extracts canonical post URLs from text, in discovery order.
//
// Duplicates present in the input are preserved; deduplication is the
// ledger's job, not the resolver's. A failed short-link expansion drops that
// token with a warning and continues with the rest of the batch.
func (r *Resolver) Resolve(ctx context.Context, text string) []string {
	var urls []string
	for _, token := range strings.Fields(text) {
		if m := shortPattern.FindString(token); m != "" {
			target, err := r.client.ResolveRedirect(ctx, m)
			if err != nil {
				r.onProgress.Emit(progress.LevelWarning, "could not expand short link %s: %v", m, err)
				continue
			}
			token = target
		}
		// Share pattern before canonical pattern; first match wins.
		if m := sharePattern.FindString(token); m != "" {
			urls = append(urls, m)
		} else if m := canonicalPattern.FindString(token); m != "" {
			urls = append(urls, m)
		}
	}
	return urls
}
