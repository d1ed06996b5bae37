// Package ioutils provides file system utilities for rednote-downloader.
//
// This package contains functions for:
//   - Atomic file placement (temp file + rename)
//   - Checking whether a destination stem already exists under any extension
//   - Filename sanitization
//   - Directory creation
package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MoveFile atomically moves src to dst.
//
// os.Rename is atomic on the same filesystem, which is the normal case since
// temp files are created next to their destination. If the rename fails with
// a cross-device error, the file is copied and the source removed.
//
// Example:
//
//	err := MoveFile("/downloads/abc/.tmp-image_abc_1", "/downloads/abc/image_abc_1.png")
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}

// StemExists reports whether any file named "<stem>.*" exists in dir.
//
// This is the skip-if-exists check: a previous run may have saved the asset
// under a different extension (content-type driven), so the match is on the
// stem, not the full name.
//
// A malformed pattern or unreadable directory counts as "does not exist";
// the download manager then just re-fetches the file.
func StemExists(dir, stem string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, globEscape(stem)+".*"))
	if err != nil {
		return false
	}
	return len(matches) > 0
}

// globEscape escapes filepath.Glob metacharacters in a literal file stem.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Leading/trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("clip: part 1/2") // Returns "clip_ part 1_2"
func SanitizeFileName(name string) string {
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	return strings.Trim(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755. If the directory already exists,
// no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
