package rednote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	httpx "github.com/askoura/rednote-downloader/internal/http"
	"github.com/askoura/rednote-downloader/internal/progress"
	"github.com/stretchr/testify/assert"
)

func newTestResolver(onProgress progress.Func) *Resolver {
	client := httpx.NewClient("test-agent", "", 5*time.Second)
	return NewResolver(client, onProgress)
}

func TestResolver_Resolve_Patterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "canonical link",
			text: "https://www.xiaohongshu.com/explore/abc123",
			want: []string{"https://www.xiaohongshu.com/explore/abc123"},
		},
		{
			name: "share link",
			text: "https://www.xiaohongshu.com/discovery/item/def456",
			want: []string{"https://www.xiaohongshu.com/discovery/item/def456"},
		},
		{
			name: "link with query string",
			text: "https://www.xiaohongshu.com/explore/abc123?xsec_token=AB&source=webshare",
			want: []string{"https://www.xiaohongshu.com/explore/abc123"},
		},
		{
			name: "link buried in share text",
			text: "check this out https://www.xiaohongshu.com/explore/abc123 so pretty",
			want: []string{"https://www.xiaohongshu.com/explore/abc123"},
		},
		{
			name: "multiple links keep order",
			text: "https://www.xiaohongshu.com/explore/abc https://www.xiaohongshu.com/explore/def",
			want: []string{
				"https://www.xiaohongshu.com/explore/abc",
				"https://www.xiaohongshu.com/explore/def",
			},
		},
		{
			name: "duplicates preserved",
			text: "https://www.xiaohongshu.com/explore/abc https://www.xiaohongshu.com/explore/abc",
			want: []string{
				"https://www.xiaohongshu.com/explore/abc",
				"https://www.xiaohongshu.com/explore/abc",
			},
		},
		{
			name: "no links",
			text: "just some words with no link at all",
			want: nil,
		},
		{
			name: "http scheme accepted",
			text: "http://www.xiaohongshu.com/explore/abc123",
			want: []string{"http://www.xiaohongshu.com/explore/abc123"},
		},
	}

	r := newTestResolver(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(context.Background(), tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_Resolve_SharePatternWins(t *testing.T) {
	// A token matching both patterns resolves to the share form.
	r := newTestResolver(nil)

	text := "https://www.xiaohongshu.com/discovery/item/abc123?ref=https://www.xiaohongshu.com/explore/zzz999"
	got := r.Resolve(context.Background(), text)

	assert.Equal(t, []string{"https://www.xiaohongshu.com/discovery/item/abc123"}, got)
}

func TestResolver_Resolve_ShortLinkExpansion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://www.xiaohongshu.com/discovery/item/expanded1?token=x", http.StatusFound)
	}))
	defer srv.Close()

	// Point the short-link pattern at the test server so expansion goes
	// through a real redirect hop.
	orig := shortPattern
	shortPattern = regexp.MustCompile(regexp.QuoteMeta(srv.URL) + `/[A-Za-z0-9]+`)
	defer func() { shortPattern = orig }()

	r := newTestResolver(nil)
	got := r.Resolve(context.Background(), srv.URL+"/AbCdEf")

	assert.Equal(t, []string{"https://www.xiaohongshu.com/discovery/item/expanded1"}, got)
}

func TestResolver_Resolve_FailedExpansionDropsToken(t *testing.T) {
	// A server that is already closed: expansion fails with a connection
	// error, the token is dropped, the rest of the batch still resolves.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	orig := shortPattern
	shortPattern = regexp.MustCompile(regexp.QuoteMeta(deadURL) + `/[A-Za-z0-9]+`)
	defer func() { shortPattern = orig }()

	var events []progress.Event
	r := newTestResolver(func(e progress.Event) { events = append(events, e) })

	text := deadURL + "/AbCdEf https://www.xiaohongshu.com/explore/abc123"
	got := r.Resolve(context.Background(), text)

	assert.Equal(t, []string{"https://www.xiaohongshu.com/explore/abc123"}, got)
	if assert.NotEmpty(t, events) {
		assert.Equal(t, progress.LevelWarning, events[0].Level)
	}
}
