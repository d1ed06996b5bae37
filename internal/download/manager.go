package download

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/askoura/rednote-downloader/internal/config"
	httpx "github.com/askoura/rednote-downloader/internal/http"
	ioutils "github.com/askoura/rednote-downloader/internal/io"
	"github.com/askoura/rednote-downloader/internal/ledger"
	"github.com/askoura/rednote-downloader/internal/model"
	"github.com/askoura/rednote-downloader/internal/progress"
	"golang.org/x/sync/errgroup"
)

// contentTypeExt maps a response's declared content type to the file
// extension used for the final destination. An empty value means "use the
// asset's fallback format" (servers that answer octet-stream don't tell us
// anything useful).
var contentTypeExt = map[string]string{
	"image/png":                "png",
	"image/jpeg":               "jpg",
	"image/webp":               "webp",
	"image/gif":                "gif",
	"application/octet-stream": "",
	"video/mp4":                "mp4",
	"video/quicktime":          "mov",
}

// Manager executes the per-asset downloads of one post.
//
// For each run it consults the dedup ledger, builds download tasks from the
// post's assets, fans them out concurrently, and records the post id in the
// ledger only when every asset succeeded. Failures never escape Run; they
// become false entries in the result slice.
type Manager struct {
	settings   *config.Settings
	client     *httpx.Client
	ledger     *ledger.Ledger
	images     *ioutils.ImageService
	retry      RetryPolicy
	onProgress progress.Func
}

// NewManager creates a download Manager.
func NewManager(settings *config.Settings, client *httpx.Client, led *ledger.Ledger, onProgress progress.Func) *Manager {
	return &Manager{
		settings: settings,
		client:   client,
		ledger:   led,
		images:   ioutils.NewImageService(),
		retry: RetryPolicy{
			MaxRetries: settings.DownloadMaxRetries,
			Cooldown:   settings.DownloadRetryCooldown,
			Exponent:   settings.DownloadRetryExponent,
			Retryable:  retryable,
		},
		onProgress: onProgress,
	}
}

// task is one pending asset download, derived from a post for a single run.
type task struct {
	asset model.Asset
	stem  string
}

// Run downloads the post's assets into the post's folder and returns the
// folder plus one success flag per executed task.
//
// Behavior:
//   - A post already in the ledger is skipped entirely (nil results).
//   - indices, when non-empty, restricts downloads to the assets whose
//     1-based Index is listed (image selection).
//   - Assets whose destination stem already exists on disk under any
//     extension are skipped without downloading.
//   - The post id is added to the ledger only if every task succeeded; zero
//     tasks (everything already on disk) counts as success.
//
// Run never returns an error: every failure is reported through the progress
// sink and reflected as a false result.
func (m *Manager) Run(ctx context.Context, post *model.Post, indices []int) (string, []bool) {
	recorded, err := m.ledger.Contains(ctx, post.ID)
	if err != nil {
		m.onProgress.Emit(progress.LevelWarning, "ledger lookup for %s failed: %v", post.ID, err)
	}
	if recorded {
		m.onProgress.Emit(progress.LevelInfo, "skipping %s: already downloaded", post.ID)
		return post.Folder, nil
	}

	if len(post.Assets) == 0 {
		m.onProgress.Emit(progress.LevelWarning, "no download addresses for %s", post.ID)
		return post.Folder, nil
	}

	if err := ioutils.EnsureDir(post.Folder); err != nil {
		m.onProgress.Emit(progress.LevelError, "could not create %s: %v", post.Folder, err)
		return post.Folder, nil
	}

	tasks := m.buildTasks(post, indices)

	results := make([]bool, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentDownloads)

	for i, t := range tasks {
		g.Go(func() error {
			results[i] = m.runTask(gctx, post, t)
			return nil
		})
	}
	g.Wait()

	if !slices.Contains(results, false) {
		if err := m.ledger.Add(ctx, post.ID); err != nil {
			m.onProgress.Emit(progress.LevelWarning, "could not record %s: %v", post.ID, err)
		} else {
			m.onProgress.Emit(progress.LevelSuccess, "recorded %s as complete", post.ID)
		}
	} else {
		m.onProgress.Emit(progress.LevelWarning, "%s incomplete, will retry missing files next run", post.ID)
	}

	return post.Folder, results
}

// buildTasks derives the pending downloads: selected by index, named by the
// post's stem rules, and not already present on disk.
func (m *Manager) buildTasks(post *model.Post, indices []int) []task {
	var tasks []task
	for _, asset := range post.Assets {
		if len(indices) > 0 && !slices.Contains(indices, asset.Index) {
			continue
		}
		stem := post.AssetStem(asset.Index)
		if ioutils.StemExists(post.Folder, stem) {
			m.onProgress.Emit(progress.LevelVerbose, "skipping existing file: %s", stem)
			continue
		}
		tasks = append(tasks, task{asset: asset, stem: stem})
	}
	return tasks
}

// runTask downloads one asset with the retry policy applied, returning
// whether the asset ended up on disk.
func (m *Manager) runTask(ctx context.Context, post *model.Post, t task) bool {
	m.onProgress.Emit(progress.LevelVerbose, "downloading %s", t.stem)

	var dest string
	attempt := 0
	err := m.retry.Do(ctx, func() error {
		attempt++
		if attempt > 1 {
			m.onProgress.Emit(progress.LevelWarning, "retry %d/%d for %s", attempt-1, m.retry.MaxRetries, t.stem)
		}
		var derr error
		dest, derr = m.download(ctx, post.Folder, t)
		return derr
	})
	if err != nil {
		m.onProgress.Emit(progress.LevelError, "download of %s failed: %v", t.stem, err)
		return false
	}

	m.convertImage(post, dest)
	m.onProgress.Emit(progress.LevelSuccess, "downloaded %s", filepath.Base(dest))
	return true
}

// download performs a single download attempt: stream the asset into a
// temporary file, then atomically move it to its final destination. The
// destination never holds a partial file.
func (m *Manager) download(ctx context.Context, folder string, t task) (string, error) {
	stream, err := m.client.Stream(ctx, t.asset.SourceURL, nil)
	if err != nil {
		return "", err
	}
	defer stream.Body.Close()

	if stream.StatusCode < 200 || stream.StatusCode > 299 {
		return "", &StatusError{Code: stream.StatusCode, Status: stream.Status}
	}

	ext, ok := contentTypeExt[stream.ContentType]
	if !ok || ext == "" {
		ext = t.asset.Format
	}

	tempPath := filepath.Join(folder, ".tmp-"+t.stem)
	tempCreated := false
	// cleanup is guarded by the flag: a failure before the temp file exists
	// must not raise a secondary error.
	cleanup := func() {
		if tempCreated {
			os.Remove(tempPath)
		}
	}

	f, err := os.Create(tempPath)
	if err != nil {
		return "", err
	}
	tempCreated = true

	buf := make([]byte, m.chunkSize())
	if _, err := io.CopyBuffer(f, stream.Body, buf); err != nil {
		f.Close()
		cleanup()
		return "", err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", err
	}

	dest := filepath.Join(folder, t.stem+"."+ext)
	if err := ioutils.MoveFile(tempPath, dest); err != nil {
		cleanup()
		return "", err
	}

	return dest, nil
}

// convertImage re-encodes a downloaded image into the configured format when
// conversion is enabled. Conversion failures only warn; the original file
// stays and the task still counts as successful.
func (m *Manager) convertImage(post *model.Post, dest string) {
	if !m.settings.ConvertImages || post.Type != model.PostTypeImageSet {
		return
	}
	want := "." + m.settings.ImageFormat
	if strings.EqualFold(filepath.Ext(dest), want) {
		return
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		m.onProgress.Emit(progress.LevelWarning, "could not read %s for conversion: %v", dest, err)
		return
	}
	converted, err := m.images.Convert(data, m.settings.ImageFormat)
	if err != nil {
		m.onProgress.Emit(progress.LevelWarning, "could not convert %s: %v", filepath.Base(dest), err)
		return
	}

	target := strings.TrimSuffix(dest, filepath.Ext(dest)) + want
	if err := os.WriteFile(target, converted, 0644); err != nil {
		m.onProgress.Emit(progress.LevelWarning, "could not write %s: %v", target, err)
		return
	}
	os.Remove(dest)
}

func (m *Manager) chunkSize() int {
	if m.settings.ChunkSize > 0 {
		return m.settings.ChunkSize
	}
	return 1024 * 1024
}
