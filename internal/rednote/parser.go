package rednote

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/askoura/rednote-downloader/internal/model"
	"github.com/askoura/rednote-downloader/internal/rednote/dto"
)

// ErrNoInitialState is returned when the embedded data blob cannot be found
// in a page.
//
// This typically occurs when:
//   - The URL does not point at a post page (login wall, 404 page)
//   - The page structure has changed unexpectedly
var ErrNoInitialState = errors.New("no initial state data in page")

// ErrNoNote is returned when the blob decodes but contains no note record.
var ErrNoNote = errors.New("no note record in page data")

// Parser extracts post information from post page HTML.
//
// The site embeds the post data as a JavaScript assignment within the page:
//
//	<script>window.__INITIAL_STATE__={...}</script>
//
// The Parser extracts that object, fixes the JavaScript-isms that make it
// invalid JSON, and deserializes it into a Post model.
//
// Example usage:
//
//	parser := NewParser(pathConfig, "mp4", "png")
//	post, err := parser.ParsePostPage(html)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s by %s (%d assets)\n", post.Title, post.Author, len(post.Assets))
type Parser struct {
	pathConfig  *model.PathConfig
	videoFormat string
	imageFormat string
}

// NewParser creates a new Parser.
//
// pathCfg determines where parsed posts will be saved; videoFormat and
// imageFormat are the fallback file extensions recorded on each asset.
func NewParser(pathCfg *model.PathConfig, videoFormat, imageFormat string) *Parser {
	return &Parser{
		pathConfig:  pathCfg,
		videoFormat: videoFormat,
		imageFormat: imageFormat,
	}
}

// ParsePostPage extracts post info from a post page's HTML.
//
// Steps:
//  1. Extract the window.__INITIAL_STATE__ object from the HTML
//  2. Replace JavaScript "undefined" values so the object parses as JSON
//  3. Deserialize into DTO structs
//  4. Classify the note and derive the ordered asset list
//
// Returns ErrNoInitialState or ErrNoNote (wrapped) when the blob or the note
// record is missing, and a plain decode error when the JSON is malformed.
func (p *Parser) ParsePostPage(htmlContent string) (*model.Post, error) {
	raw, err := extractInitialState(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve post data: %w", err)
	}

	raw = fixJSON(raw)

	var state dto.InitialState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to parse post JSON: %w", err)
	}

	post := state.ToPost(p.pathConfig, p.videoFormat, p.imageFormat)
	if post == nil {
		return nil, ErrNoNote
	}

	return post, nil
}

// extractInitialState extracts the JSON object assigned to
// window.__INITIAL_STATE__ from HTML.
//
// The assignment runs to the end of its script element, so the closing
// </script> tag bounds the object.
func extractInitialState(htmlContent string) (string, error) {
	const startString = "window.__INITIAL_STATE__="
	const stopString = "</script>"

	startIndex := strings.Index(htmlContent, startString)
	if startIndex == -1 {
		return "", ErrNoInitialState
	}

	remaining := htmlContent[startIndex+len(startString):]

	endIndex := strings.Index(remaining, stopString)
	if endIndex == -1 {
		return "", ErrNoInitialState
	}

	return strings.TrimSpace(remaining[:endIndex]), nil
}

// undefinedValue matches a JavaScript undefined used in value position. The
// blob is a JavaScript object literal, not strict JSON, and absent fields are
// serialized as undefined.
var undefinedValue = regexp.MustCompile(`(?m)([:,\[])\s*undefined`)

// fixJSON rewrites JavaScript-only tokens so the blob parses as JSON.
func fixJSON(raw string) string {
	return undefinedValue.ReplaceAllString(raw, "${1}null")
}
