// Package playlist turns a free-form tracklist into ordered track records.
//
// One entry per line, "Artist - Title". "HOUR n" lines start an hour
// section. Blank lines are ignored. Lines starting with # or // are
// comments unless they hold a spaced dash, so "#1 Dads - So Soldier" is
// still a track.
package playlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	UnknownArtist = "Unknown Artist"
	UntitledTrack = "Untitled"
)

type ParsedTrack struct {
	Position int    `json:"position"`
	Hour     *int   `json:"hour,omitempty"`
	Artist   string `json:"artist"`
	Track    string `json:"track"`
}

type Result struct {
	Tracks   []ParsedTrack `json:"tracks"`
	Errors   []string      `json:"errors"`
	Warnings []string      `json:"warnings"`
}

var (
	hourHeader   = regexp.MustCompile(`(?i)^hour\s*(\d+)\s*[:\-–—]?$`)
	trackNumber  = regexp.MustCompile(`^\d{1,3}[.)]\s+`)
	timestamp    = regexp.MustCompile(`^\[?\d{1,2}:\d{2}(?::\d{2})?\]?\s+`)
	unspacedDash = regexp.MustCompile(`^(.*?\S)[-–—](\S.*)$`)
	byDelimiter  = regexp.MustCompile(`(?i)\s+by\s+`)
)

var spacedDashes = []string{" - ", " – ", " — "}

// Parse scans text line by line. It has no side effects and returns the same
// result for the same input.
func Parse(text string) Result {
	res := Result{Tracks: []ParsedTrack{}, Errors: []string{}, Warnings: []string{}}
	var hour *int
	position := 0

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}
		if isComment(line) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: skipped comment: %q", lineNo, line))
			continue
		}

		if m := hourHeader.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("line %d: invalid hour header %q", lineNo, line))
				continue
			}
			if hour != nil && n < *hour {
				res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: hour %d comes after hour %d, header ignored", lineNo, n, *hour))
				continue
			}
			h := n
			hour = &h
			continue
		}

		entry := stripDecoration(line)
		artist, title, warning, err := split(entry)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v: %q", lineNo, err, line))
			continue
		}
		if warning != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %s: %q", lineNo, warning, line))
		}

		position++
		res.Tracks = append(res.Tracks, ParsedTrack{
			Position: position,
			Hour:     copyHour(hour),
			Artist:   artist,
			Track:    title,
		})
	}
	return res
}

func isComment(line string) bool {
	if !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "//") {
		return false
	}
	return spacedDashIndex(" "+line+" ") < 0
}

func stripDecoration(line string) string {
	for {
		stripped := trackNumber.ReplaceAllString(line, "")
		stripped = timestamp.ReplaceAllString(stripped, "")
		if stripped == line {
			return line
		}
		line = strings.TrimSpace(stripped)
	}
}

// split returns artist and title. A non-empty warning means the entry was
// guessed; an error means the line holds no usable pair.
func split(entry string) (string, string, string, error) {
	if entry == "" {
		return "", "", "", fmt.Errorf("empty entry")
	}

	padded := " " + entry + " "
	if idx, width := spacedDashIndexWidth(padded); idx >= 0 {
		artist := strings.TrimSpace(padded[:idx])
		title := strings.TrimSpace(padded[idx+width:])
		return fillBlanks(artist, title)
	}

	if m := unspacedDash.FindStringSubmatch(entry); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), "split on unspaced dash", nil
	}

	if loc := byDelimiter.FindStringIndex(entry); loc != nil {
		title := strings.TrimSpace(entry[:loc[0]])
		artist := strings.TrimSpace(entry[loc[1]:])
		if title != "" && artist != "" {
			return artist, title, "read as \"Title by Artist\"", nil
		}
	}

	return "", "", "", fmt.Errorf("no artist/title delimiter")
}

// spacedDashIndexWidth returns the earliest spaced dash in s and its byte
// width, or -1.
func spacedDashIndexWidth(s string) (int, int) {
	idx, width := -1, 0
	for _, d := range spacedDashes {
		if i := strings.Index(s, d); i >= 0 && (idx < 0 || i < idx) {
			idx, width = i, len(d)
		}
	}
	return idx, width
}

func spacedDashIndex(s string) int {
	idx, _ := spacedDashIndexWidth(s)
	return idx
}

func fillBlanks(artist, title string) (string, string, string, error) {
	switch {
	case artist == "" && title == "":
		return "", "", "", fmt.Errorf("empty artist and title")
	case artist == "":
		return UnknownArtist, title, "missing artist", nil
	case title == "":
		return artist, UntitledTrack, "missing title", nil
	}
	return artist, title, "", nil
}

func copyHour(h *int) *int {
	if h == nil {
		return nil
	}
	v := *h
	return &v
}
