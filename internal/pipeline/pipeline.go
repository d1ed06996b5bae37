// Package pipeline wires the resolver, extractor, download manager, and
// dedup ledger into the resolve → extract → download → record flow, and
// exposes the clipboard watch mode on top of it.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/askoura/rednote-downloader/internal/config"
	"github.com/askoura/rednote-downloader/internal/download"
	httpx "github.com/askoura/rednote-downloader/internal/http"
	ioutils "github.com/askoura/rednote-downloader/internal/io"
	"github.com/askoura/rednote-downloader/internal/ledger"
	"github.com/askoura/rednote-downloader/internal/model"
	"github.com/askoura/rednote-downloader/internal/progress"
	"github.com/askoura/rednote-downloader/internal/rednote"
	"github.com/askoura/rednote-downloader/internal/watch"
)

// Options controls one extraction run.
type Options struct {
	// Download enables asset downloads; when false only metadata is
	// extracted (and persisted when RecordData is set).
	Download bool

	// Indices restricts image downloads to the listed 1-based positions.
	// Empty means all assets.
	Indices []int

	// Efficient skips the politeness delay between the page fetch and the
	// asset downloads.
	Efficient bool
}

// Pipeline is the application core: one instance owns the HTTP client, the
// extraction components, the download manager, and the ledger handle, and is
// shared by the CLI, the TUI, and the watch loop.
type Pipeline struct {
	settings   *config.Settings
	client     *httpx.Client
	resolver   *rednote.Resolver
	parser     *rednote.Parser
	manager    *download.Manager
	ledger     *ledger.Ledger
	onProgress progress.Func
}

// New creates a Pipeline from settings and an opened ledger.
func New(settings *config.Settings, led *ledger.Ledger, onProgress progress.Func) *Pipeline {
	client := httpx.NewClient(settings.UserAgent, settings.Cookie,
		time.Duration(settings.TimeoutSeconds)*time.Second)

	return &Pipeline{
		settings:   settings,
		client:     client,
		resolver:   rednote.NewResolver(client, onProgress),
		parser:     rednote.NewParser(settings.ToPathConfig(), settings.VideoFormat, settings.ImageFormat),
		manager:    download.NewManager(settings, client, led, onProgress),
		ledger:     led,
		onProgress: onProgress,
	}
}

// Resolve exposes the link resolver for callers that only need URL
// classification (the watch producer).
func (p *Pipeline) Resolve(ctx context.Context, text string) []string {
	return p.resolver.Resolve(ctx, text)
}

// Extract resolves every link in text and runs each through the pipeline,
// returning the extracted posts in input order. Failures on one link never
// abort the others.
func (p *Pipeline) Extract(ctx context.Context, text string, opts Options) []*model.Post {
	urls := p.resolver.Resolve(ctx, text)
	if len(urls) == 0 {
		p.onProgress.Emit(progress.LevelWarning, "no post links found in input")
		return nil
	}
	p.onProgress.Emit(progress.LevelInfo, "%d link(s) pending", len(urls))

	var posts []*model.Post
	for _, url := range urls {
		if post := p.Process(ctx, url, opts); post != nil {
			posts = append(posts, post)
		}
	}
	return posts
}

// Process runs one canonical URL through fetch → parse → persist → download.
// It returns nil when extraction failed; a post with an empty asset list is
// still returned (and persisted) for diagnostics.
func (p *Pipeline) Process(ctx context.Context, url string, opts Options) *model.Post {
	p.onProgress.Emit(progress.LevelInfo, "processing %s", url)

	html, err := p.client.GetString(ctx, url, pageHeaders())
	if err != nil {
		p.onProgress.Emit(progress.LevelError, "could not fetch %s: %v", url, err)
		return nil
	}

	post, err := p.parser.ParsePostPage(html)
	if err != nil {
		if errors.Is(err, rednote.ErrNoInitialState) || errors.Is(err, rednote.ErrNoNote) {
			p.onProgress.Emit(progress.LevelError, "no post data in %s", url)
		} else {
			p.onProgress.Emit(progress.LevelError, "could not extract %s: %v", url, err)
		}
		return nil
	}

	p.onProgress.Emit(progress.LevelVerbose, "extracted %s: %s, %d asset(s)",
		post.ID, post.Type, len(post.Assets))

	p.suspend(ctx, opts.Efficient)

	if p.settings.RecordData {
		p.persistRecord(post)
	}

	if post.Type == model.PostTypeUnknown {
		p.onProgress.Emit(progress.LevelWarning, "unrecognized content type for %s, nothing to download", post.ID)
		return post
	}
	if len(post.Assets) == 0 {
		p.onProgress.Emit(progress.LevelWarning, "no download addresses for %s", post.ID)
		return post
	}

	if opts.Download {
		p.manager.Run(ctx, post, opts.Indices)
	}

	p.onProgress.Emit(progress.LevelInfo, "finished %s", url)
	return post
}

// NewMonitor builds a clipboard watch loop that drains discovered links
// through this pipeline with the given options.
func (p *Pipeline) NewMonitor(opts Options) *watch.Monitor {
	interval := time.Duration(p.settings.PollIntervalSeconds * float64(time.Second))
	return watch.NewMonitor(watch.Config{
		Interval: interval,
		Resolve:  p.Resolve,
		Handle: func(ctx context.Context, url string) {
			p.Process(ctx, url, opts)
		},
		OnProgress: p.onProgress,
	})
}

// persistRecord writes the extracted record as data.json in the post folder.
// This is diagnostics output; failures only warn.
func (p *Pipeline) persistRecord(post *model.Post) {
	if err := ioutils.EnsureDir(post.Folder); err != nil {
		p.onProgress.Emit(progress.LevelWarning, "could not create %s: %v", post.Folder, err)
		return
	}
	data, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		p.onProgress.Emit(progress.LevelWarning, "could not encode record for %s: %v", post.ID, err)
		return
	}
	path := filepath.Join(post.Folder, "data.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		p.onProgress.Emit(progress.LevelWarning, "could not save record %s: %v", path, err)
		return
	}
	p.onProgress.Emit(progress.LevelVerbose, "saved record %s", path)
}

// suspend pauses between the page fetch and the downloads to stay under the
// site's rate limits. Pure delay, skipped in efficient mode.
func (p *Pipeline) suspend(ctx context.Context, efficient bool) {
	if efficient {
		return
	}
	delay := 2500*time.Millisecond + time.Duration(rand.IntN(2500))*time.Millisecond
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// pageHeaders returns the browser-like headers sent with post page fetches.
func pageHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		"Cache-Control":   "max-age=0",
	}
}
