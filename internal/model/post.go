package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PostType classifies the media content of a post.
type PostType int

const (
	// PostTypeUnknown means the post could not be classified. Posts of this
	// type carry no assets and are never downloaded.
	PostTypeUnknown PostType = iota

	// PostTypeVideo is a post with exactly one playable video stream.
	PostTypeVideo

	// PostTypeImageSet is a post with one or more images in source order.
	PostTypeImageSet
)

// String returns a human-readable name for the post type.
func (t PostType) String() string {
	switch t {
	case PostTypeVideo:
		return "video"
	case PostTypeImageSet:
		return "image set"
	default:
		return "unknown"
	}
}

// Post represents one resolved post with its metadata and media assets.
//
// Post is the unit of work for the download pipeline: the ID is the dedup
// key, the assets are what gets downloaded, and the remaining fields feed
// file naming.
//
// Invariant: ID is non-empty whenever Type != PostTypeUnknown. Assets may be
// empty only when extraction partially failed; such posts are still persisted
// for diagnostics but never downloaded.
type Post struct {
	// ID is the stable post identifier, used as the dedup ledger key and
	// as the per-post folder name.
	ID string `json:"id"`

	// Type classifies the post's media content.
	Type PostType `json:"type"`

	// Title is the post title. May be empty.
	Title string `json:"title"`

	// Author is the author's display name. May be empty.
	Author string `json:"author"`

	// AuthorID is the author's stable identifier, used as a naming
	// fallback when Author is empty.
	AuthorID string `json:"author_id"`

	// PublishedAt is the publish timestamp formatted for file naming
	// (colons already replaced, safe for filenames). May be empty.
	PublishedAt string `json:"published_at"`

	// Assets lists the downloadable media in source order. Order is
	// significant: image numbering depends on it.
	Assets []Asset `json:"assets"`

	// Folder is the computed local directory where this post's files are
	// saved. Set by NewPost from PathConfig.
	Folder string `json:"-"`
}

// Asset is one downloadable file belonging to a post.
type Asset struct {
	// SourceURL is the remote address of the media file.
	SourceURL string `json:"source_url"`

	// Index is the 1-based position of the asset within the post, used
	// for selective download filtering and image file naming.
	//
	// For image sets the indices are unique and contiguous starting at 1;
	// video posts have exactly one asset with Index 1.
	Index int `json:"index"`

	// Format is the fallback file extension (without dot) used when the
	// response's content type is not in the extension table.
	Format string `json:"format"`
}

// PathConfig holds path settings for post folders.
type PathConfig struct {
	// DownloadsPath is the base directory under which per-post folders
	// are created.
	DownloadsPath string
}

// NewPost creates a Post with its folder computed from cfg.
//
// The folder is DownloadsPath/<id>. The folder is not created on disk here;
// the download manager creates it when it runs.
func NewPost(id string, typ PostType, title, author, authorID, publishedAt string, cfg *PathConfig) *Post {
	p := &Post{
		ID:          id,
		Type:        typ,
		Title:       title,
		Author:      author,
		AuthorID:    authorID,
		PublishedAt: publishedAt,
	}
	p.Folder = filepath.Join(cfg.DownloadsPath, sanitizeFileName(id))
	return p
}

// Stem returns the folder-unique file name (before extension) for the post's
// content-level file, used for video downloads.
//
// The stem is "<time>_<author>_<title>" with the title capped at 64 runes.
// Missing author falls back to AuthorID, missing title to ID; if everything
// is missing the stem is just the ID.
func (p *Post) Stem() string {
	author := sanitizeFileName(p.Author)
	if author == "" {
		author = p.AuthorID
	}
	title := sanitizeFileName(p.Title)
	if title == "" {
		title = p.ID
	}
	if r := []rune(title); len(r) > 64 {
		title = string(r[:64])
	}
	parts := make([]string, 0, 3)
	if p.PublishedAt != "" {
		parts = append(parts, p.PublishedAt)
	}
	if author != "" {
		parts = append(parts, author)
	}
	parts = append(parts, title)
	return strings.Join(parts, "_")
}

// AssetStem returns the destination file name stem for the asset at the given
// 1-based index.
//
// Video posts use the content-level Stem; image sets use "image_<id>_<n>" so
// the on-disk numbering always matches the source order regardless of the
// order downloads complete in.
func (p *Post) AssetStem(index int) string {
	if p.Type == PostTypeVideo {
		return p.Stem()
	}
	id := p.ID
	if r := []rune(id); len(r) > 64 {
		id = string(r[:64])
	}
	return fmt.Sprintf("image_%s_%d", id, index)
}

// sanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Leading/trailing whitespace is removed
func sanitizeFileName(name string) string {
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	return strings.Trim(name, " ")
}
