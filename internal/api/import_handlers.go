package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/http/response"
)

// importFormField is the multipart field carrying the uploaded file.
const importFormField = "file"

// handleImportNotes accepts a multipart upload of one .md, .html or .zip
// file and creates notes in the project named by X-Project-Id.
func (s *Server) handleImportNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := GetUserID(ctx)
	if err != nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	projectID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(projectHeader)), 10, 64)
	if err != nil || projectID <= 0 {
		response.BadRequest(w, "X-Project-Id header is required", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)

	file, header, err := r.FormFile(importFormField)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			response.HandleError(w, domainerrors.TooLargef("upload exceeds %d bytes", s.opts.MaxUploadSize), s.logger)
			return
		}
		response.BadRequest(w, "multipart field \"file\" is required", s.logger)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	result, err := s.services.Import.Import(ctx, userID, projectID, header.Filename, file, header.Size)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if result.Single && len(result.Notes) == 1 {
		response.Success(w, result.Notes[0], s.logger)
		return
	}

	response.SuccessWithMessage(w, importMessage(result), result.Notes, s.logger)
}

// importMessage summarizes an archive import, e.g. "imported 2 notes, skipped 1 entry".
func importMessage(result *domain.ImportResult) string {
	msg := fmt.Sprintf("imported %d %s", result.Count(), plural(result.Count(), "note", "notes"))
	if result.Skipped > 0 {
		msg += fmt.Sprintf(", skipped %d %s", result.Skipped, plural(result.Skipped, "entry", "entries"))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
