package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifocus/lifocus-server/internal/service"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportNotes",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/export",
		Summary:     "Export notes",
		Description: "Downloads one note as markdown or several as a zip archive",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExportNotes)
}

// ExportNotesRequest names the notes to export.
type ExportNotesRequest struct {
	NoteIDs string `json:"note_ids" doc:"Comma-separated note IDs, e.g. \"5,6\""`
}

// ExportNotesInput wraps the export request for Huma.
type ExportNotesInput struct {
	Body ExportNotesRequest
}

func (s *Server) handleExportNotes(ctx context.Context, input *ExportNotesInput) (*huma.StreamResponse, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := service.ParseIDList(input.Body.NoteIDs)
	if err != nil {
		return nil, err
	}

	bundle, err := s.services.Export.Export(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	f, err := bundle.Open()
	if err != nil {
		_ = bundle.Close()
		return nil, err
	}

	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			defer func() {
				_ = f.Close()
				if err := bundle.Close(); err != nil {
					s.logger.Warn("failed to remove export scratch", "error", err)
				}
			}()

			hctx.SetHeader("Content-Type", bundle.ContentType)
			hctx.SetHeader("Content-Disposition", contentDisposition(bundle.Filename))
			hctx.SetHeader("Content-Length", strconv.FormatInt(bundle.Size, 10))

			if _, err := io.Copy(hctx.BodyWriter(), f); err != nil {
				s.logger.Warn("export stream interrupted", "user_id", userID, "error", err)
			}
		},
	}, nil
}

// contentDisposition builds an attachment header with an ASCII filename
// and an RFC 5987 UTF-8 filename*.
func contentDisposition(name string) string {
	return `attachment; filename="` + asciiFilename(name) + `"; filename*=UTF-8''` + encodeRFC5987(name)
}

// asciiFilename replaces characters that cannot appear in a quoted ASCII
// filename parameter.
func asciiFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// encodeRFC5987 percent-encodes every byte outside attr-char.
func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
