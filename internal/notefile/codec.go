package notefile

import (
	"path"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/errors"
)

// Extension is the suffix of every mirrored, imported and exported note file.
const Extension = ".md"

// untitledLayout formats the timestamp of placeholder titles.
const untitledLayout = "20060102_150405"

// ToMarkdown renders a note as a markdown document.
//
// The body is the note content verbatim. The title travels in the file name,
// and no metadata header (title heading, created/updated lines) is written so
// that exporting and re-importing a note reproduces its content exactly.
func ToMarkdown(note *domain.Note) string {
	return note.Content
}

// FileName returns "<name>.md", using fallback when name is empty.
func FileName(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	return name + Extension
}

// TitleFromFilename derives a note title from an uploaded file name: the
// directory and the final extension are dropped. An empty stem yields
// "untitled_note_<YYYYMMDD_HHMMSS>".
func TitleFromFilename(name string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	if strings.TrimSpace(stem) == "" {
		return "untitled_note_" + now.Format(untitledLayout)
	}
	return stem
}

// HasExtension reports whether name ends in ext, ignoring case.
func HasExtension(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}

// DecodeMarkdown returns the document bytes as note content.
// The bytes must be valid UTF-8 and are otherwise kept unchanged.
func DecodeMarkdown(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.Decode("file is not valid UTF-8")
	}
	return string(b), nil
}

// HTMLToMarkdown converts an HTML document to markdown note content.
func HTMLToMarkdown(b []byte) (string, error) {
	content, err := DecodeMarkdown(b)
	if err != nil {
		return "", err
	}

	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeDecode, "could not convert HTML to markdown")
	}
	return strings.TrimSpace(markdown), nil
}
