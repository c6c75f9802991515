// Package location turns candidate paths into editor locations.
package location

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/emberls/pkg/position"
	"gitlab.com/tozd/go/errors"
)

type Location struct {
	URI   string         `json:"uri"`
	Range position.Range `json:"range"`
}

// URIFromPath builds a file:// URI for an absolute path.
func URIFromPath(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// PathFromURI is the inverse of URIFromPath. Only file URIs are accepted.
func PathFromURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", errors.Errorf("parsing uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", errors.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	return filepath.FromSlash(u.Path), nil
}

// Existing keeps the paths that name regular files, in order.
func Existing(fs afero.Fs, paths []string) []string {
	var out []string
	for _, p := range paths {
		info, err := fs.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ToLocations points at the start of every existing file in paths.
func ToLocations(fs afero.Fs, paths []string) []Location {
	var out []Location
	for _, p := range Existing(fs, paths) {
		out = append(out, Location{URI: URIFromPath(p), Range: position.Range{}})
	}
	return out
}

// ToLocationsWithPosition points at the first occurrence of needle that
// FirstTextPosition accepts in every existing file, or at the file start
// when there is none. Files that cannot be read are left out.
func ToLocationsWithPosition(ctx context.Context, fs afero.Fs, paths []string, needle string) []Location {
	var out []Location
	for _, p := range Existing(fs, paths) {
		text, err := afero.ReadFile(fs, p)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("path", p).Msg("dropping unreadable candidate")
			continue
		}

		var rng position.Range
		if start, ok := findWordStart(string(text), needle); ok {
			end := start
			end.Character += position.UTF16Len(needle)
			rng = position.Range{Start: start, End: end}
		}
		out = append(out, Location{URI: URIFromPath(p), Range: rng})
	}
	return out
}

// FirstTextPosition finds the first line where needle starts a word: the
// text before it on the line is blank or ends in whitespace, and the
// character after it is not an ASCII letter. Only the first occurrence on
// each line is considered. It returns the origin when no line matches.
//
// This is a text search, not a symbol lookup: matches inside comments and
// strings count.
func FirstTextPosition(text, needle string) position.Position {
	pos, _ := findWordStart(text, needle)
	return pos
}

func findWordStart(text, needle string) (position.Position, bool) {
	if needle == "" {
		return position.Position{}, false
	}

	for i, line := range strings.SplitAfter(text, "\n") {
		idx := strings.Index(line, needle)
		if idx < 0 {
			continue
		}

		before := line[:idx]
		after := line[idx+len(needle):]

		if !endsWithSpace(before) && strings.TrimSpace(before) != "" {
			continue
		}
		if startsWithASCIILetter(after) {
			continue
		}

		return position.New(i, position.UTF16Len(before)), true
	}

	return position.Position{}, false
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && unicode.IsSpace(r)
}

func startsWithASCIILetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
