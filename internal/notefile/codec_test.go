package notefile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/errors"
)

func TestToMarkdown_ContentVerbatim(t *testing.T) {
	note := &domain.Note{ID: 3, Title: "Title not in body", Content: "# Heading\n\nbody\r\n"}
	assert.Equal(t, note.Content, ToMarkdown(note))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Draft.md", FileName("Draft", "note_1"))
	assert.Equal(t, "note_1.md", FileName("", "note_1"))
}

func TestTitleFromFilename(t *testing.T) {
	now := time.Date(2024, 6, 7, 8, 9, 10, 0, time.UTC)

	tests := []struct {
		in   string
		want string
	}{
		{in: "a.md", want: "a"},
		{in: "notes/sub/b.md", want: "b"},
		{in: `notes\win\c.MD`, want: "c"},
		{in: "archive.tar.md", want: "archive.tar"},
		{in: "no-extension", want: "no-extension"},
		{in: ".md", want: "untitled_note_20240607_080910"},
		{in: "", want: "untitled_note_20240607_080910"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleFromFilename(tt.in, now))
		})
	}
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("A.MD", ".md"))
	assert.True(t, HasExtension("x.Zip", ".zip"))
	assert.False(t, HasExtension("x.markdown", ".md"))
}

func TestDecodeMarkdown(t *testing.T) {
	content, err := DecodeMarkdown([]byte("# 标题\n"))
	require.NoError(t, err)
	assert.Equal(t, "# 标题\n", content)

	_, err = DecodeMarkdown([]byte{0xff, 0xfe, 'a'})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDecode))
}

func TestRoundTrip_ExportThenImport(t *testing.T) {
	original := &domain.Note{ID: 9, Title: "Round", Content: "line one\n\n- item\n"}

	content, err := DecodeMarkdown([]byte(ToMarkdown(original)))
	require.NoError(t, err)
	assert.Equal(t, original.Content, content)
	assert.Equal(t, "Round", TitleFromFilename(FileName(original.Title, original.FallbackName()), time.Now()))
}

func TestHTMLToMarkdown(t *testing.T) {
	md, err := HTMLToMarkdown([]byte("<h1>Title</h1><p>Some <strong>bold</strong> text</p>"))
	require.NoError(t, err)
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "**bold**")
}
