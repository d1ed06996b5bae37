package dto

import (
	"time"

	"github.com/askoura/rednote-downloader/internal/model"
)

// InitialState mirrors the window.__INITIAL_STATE__ blob embedded in a post
// page. Only the fields the pipeline consumes are mapped.
type InitialState struct {
	Note struct {
		FirstNoteID   string                `json:"firstNoteId"`
		NoteDetailMap map[string]NoteDetail `json:"noteDetailMap"`
	} `json:"note"`
}

// NoteDetail wraps one note entry in the detail map.
type NoteDetail struct {
	Note JSONNote `json:"note"`
}

// JSONNote is the raw note record.
type JSONNote struct {
	NoteID    string      `json:"noteId"`
	Type      string      `json:"type"` // "video" or "normal"
	Title     string      `json:"title"`
	Time      int64       `json:"time"` // publish time, milliseconds since epoch
	User      JSONUser    `json:"user"`
	ImageList []JSONImage `json:"imageList"`
	Video     *JSONVideo  `json:"video"`
}

// JSONUser identifies the note author.
type JSONUser struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
}

// JSONImage is one entry of a note's image list.
type JSONImage struct {
	URLDefault string `json:"urlDefault"`
	URL        string `json:"url"`
}

// bestURL prefers the default-quality URL, falling back to the legacy field.
func (i JSONImage) bestURL() string {
	if i.URLDefault != "" {
		return i.URLDefault
	}
	return i.URL
}

// JSONVideo carries the stream variants of a video note.
type JSONVideo struct {
	Media struct {
		Stream struct {
			H264 []JSONStream `json:"h264"`
			H265 []JSONStream `json:"h265"`
		} `json:"stream"`
	} `json:"media"`
}

// JSONStream is one playable stream variant.
type JSONStream struct {
	MasterURL  string   `json:"masterUrl"`
	BackupURLs []string `json:"backupUrls"`
}

// streamURL returns the best playable URL: H.264 master first (widest
// compatibility), then H.265, then any backup.
func (v *JSONVideo) streamURL() string {
	if v == nil {
		return ""
	}
	variants := append(v.Media.Stream.H264, v.Media.Stream.H265...)
	for _, s := range variants {
		if s.MasterURL != "" {
			return s.MasterURL
		}
	}
	for _, s := range variants {
		if len(s.BackupURLs) > 0 {
			return s.BackupURLs[0]
		}
	}
	return ""
}

// ToPost converts the decoded state into a model.Post.
//
// The note is looked up by firstNoteId, falling back to the only map entry.
// Classification:
//   - "video" with a playable stream → PostTypeVideo, one asset at index 1
//   - "normal" → PostTypeImageSet, one asset per image in source order
//   - anything else → PostTypeUnknown, no assets
//
// A "video" note whose stream URL cannot be found degrades to an empty asset
// list rather than failing; the record is still produced for diagnostics.
func (s *InitialState) ToPost(pathCfg *model.PathConfig, videoFormat, imageFormat string) *model.Post {
	note, ok := s.findNote()
	if !ok {
		return nil
	}

	var publishedAt string
	if note.Time > 0 {
		publishedAt = time.UnixMilli(note.Time).Format("2006-01-02 15.04.05")
	}

	typ := model.PostTypeUnknown
	switch note.Type {
	case "video":
		typ = model.PostTypeVideo
	case "normal":
		typ = model.PostTypeImageSet
	}

	post := model.NewPost(note.NoteID, typ, note.Title, note.User.Nickname, note.User.UserID, publishedAt, pathCfg)

	switch typ {
	case model.PostTypeVideo:
		if u := note.Video.streamURL(); u != "" {
			post.Assets = []model.Asset{{SourceURL: u, Index: 1, Format: videoFormat}}
		}
	case model.PostTypeImageSet:
		for _, img := range note.ImageList {
			if u := img.bestURL(); u != "" {
				post.Assets = append(post.Assets, model.Asset{
					SourceURL: u,
					Index:     len(post.Assets) + 1,
					Format:    imageFormat,
				})
			}
		}
	}

	return post
}

func (s *InitialState) findNote() (JSONNote, bool) {
	if d, ok := s.Note.NoteDetailMap[s.Note.FirstNoteID]; ok && d.Note.NoteID != "" {
		return d.Note, true
	}
	for _, d := range s.Note.NoteDetailMap {
		if d.Note.NoteID != "" {
			return d.Note, true
		}
	}
	return JSONNote{}, false
}
