// Package archive extracts uploaded zip archives into a scratch directory.
//
// Member names written by archivers that do not flag UTF-8 are raw bytes in
// an unknown code page. Extract recovers a readable name for each member,
// refuses any member that would land outside the target directory, and
// absorbs per-member failures so one bad entry never fails the import.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/lifocus/lifocus-server/internal/errors"
)

// Default extraction limits.
const (
	DefaultMaxTotalBytes int64 = 512 << 20
	DefaultMaxMembers          = 10000
)

// Limits bound the work a single archive may cause.
type Limits struct {
	// MaxTotalBytes caps the sum of uncompressed member sizes.
	MaxTotalBytes int64
	// MaxMembers caps the number of entries in the central directory.
	MaxMembers int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxTotalBytes: DefaultMaxTotalBytes, MaxMembers: DefaultMaxMembers}
}

// Status is the outcome for one archive member.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusSkipped   Status = "skipped"
)

// MemberResult describes what happened to one archive member.
type MemberResult struct {
	// Name is the recovered, cleaned member name.
	Name string
	// Stored is the name the member was first written under.
	Stored string
	// Path is the slash-separated location relative to the target directory.
	// Empty for skipped members.
	Path   string
	Status Status
	// Reason explains a skip, or a rename that could not be applied.
	Reason string
}

// Report lists every file member of an extracted archive.
type Report struct {
	Members []MemberResult
}

// Extracted returns the number of members written to disk.
func (r *Report) Extracted() int {
	return r.count(StatusExtracted)
}

// Skipped returns the number of members that were refused.
func (r *Report) Skipped() int {
	return r.count(StatusSkipped)
}

func (r *Report) count(s Status) int {
	n := 0
	for _, m := range r.Members {
		if m.Status == s {
			n++
		}
	}
	return n
}

// Extractor unpacks archives with fixed limits.
type Extractor struct {
	limits Limits
	logger *slog.Logger
}

// NewExtractor creates an Extractor. Zero limits fall back to the defaults.
func NewExtractor(limits Limits, logger *slog.Logger) *Extractor {
	if limits.MaxTotalBytes <= 0 {
		limits.MaxTotalBytes = DefaultMaxTotalBytes
	}
	if limits.MaxMembers <= 0 {
		limits.MaxMembers = DefaultMaxMembers
	}
	return &Extractor{limits: limits, logger: logger}
}

// Extract unpacks the zip archive in r into dir, which must already exist.
//
// A malformed container yields a single ErrBadArchive error and exceeding a
// limit yields ErrTooLarge. Unsafe or unreadable members are skipped and
// listed in the report.
func (e *Extractor) Extract(ctx context.Context, r io.ReaderAt, size int64, dir string) (*Report, error) {
	zr, err := zip.NewReader(r, size)
	// Insecure names are handled member by member below.
	if errors.Is(err, zip.ErrInsecurePath) && zr != nil {
		err = nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeBadArchive, "invalid zip archive")
	}
	if len(zr.File) > e.limits.MaxMembers {
		return nil, errors.TooLargef(
			"archive has %d entries, limit is %d", len(zr.File), e.limits.MaxMembers)
	}

	report := &Report{}
	remaining := e.limits.MaxTotalBytes

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := recoverName(f)
		stored := storedName(f)

		cleanName, ok := cleanMemberPath(name)
		cleanStored, okStored := cleanMemberPath(stored)
		if !ok || !okStored {
			e.skip(report, MemberResult{Name: name, Stored: stored}, "unsafe path")
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(cleanName)), 0o755); err != nil {
				e.logger.Warn("failed to create archive directory", "name", cleanName, "error", err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			e.skip(report, MemberResult{Name: cleanName, Stored: cleanStored}, "not a regular file")
			continue
		}

		written, err := writeMember(f, filepath.Join(dir, filepath.FromSlash(cleanStored)), remaining)
		if err != nil {
			if errors.Is(err, errors.ErrTooLarge) {
				return nil, err
			}
			e.skip(report, MemberResult{Name: cleanName, Stored: cleanStored}, err.Error())
			continue
		}
		remaining -= written

		result := MemberResult{
			Name:   cleanName,
			Stored: cleanStored,
			Path:   cleanStored,
			Status: StatusExtracted,
		}
		if cleanName != cleanStored {
			if err := renameMember(dir, cleanStored, cleanName); err != nil {
				e.logger.Debug("keeping stored archive name", "stored", cleanStored, "name", cleanName, "error", err)
				result.Reason = "rename failed, kept stored name"
			} else {
				result.Path = cleanName
			}
		}
		report.Members = append(report.Members, result)
	}

	return report, nil
}

func (e *Extractor) skip(report *Report, m MemberResult, reason string) {
	m.Status = StatusSkipped
	m.Reason = reason
	e.logger.Warn("skipping archive member", "name", m.Name, "reason", reason)
	report.Members = append(report.Members, m)
}

// writeMember copies one member to dest, refusing to write more than budget bytes.
func writeMember(f *zip.File, dest string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open member: %w", err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	// Declared sizes can lie; the copy itself is bounded.
	n, err := io.CopyN(out, rc, budget+1)
	closeErr := out.Close()
	if n > budget {
		os.Remove(dest)
		return n, errors.TooLargef("archive expands beyond %d bytes", budget)
	}
	if err != nil && err != io.EOF {
		os.Remove(dest)
		return n, fmt.Errorf("read member: %w", err)
	}
	if closeErr != nil {
		return n, closeErr
	}
	return n, nil
}

func renameMember(dir, stored, name string) error {
	target := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if _, err := os.Lstat(target); err == nil {
		return os.ErrExist
	}
	return os.Rename(filepath.Join(dir, filepath.FromSlash(stored)), target)
}

// cleanMemberPath normalizes a member name and reports whether it is safe to
// place under the extraction directory. Backslashes count as separators.
func cleanMemberPath(name string) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || strings.HasPrefix(name, "/") || hasDriveLetter(name) {
		return "", false
	}

	cleaned := path.Clean(name)
	if cleaned == "." {
		return "", false
	}
	for seg := range strings.SplitSeq(cleaned, "/") {
		if seg == ".." {
			return "", false
		}
	}
	if !filepath.IsLocal(filepath.FromSlash(cleaned)) {
		return "", false
	}
	return cleaned, true
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// recoverName returns the best readable form of a member name.
//
// ASCII names are used as-is. Names flagged UTF-8 by the archiver are trusted
// when valid. Otherwise the raw bytes are tried as GBK, then as UTF-8, and
// finally as UTF-8 with invalid bytes dropped.
func recoverName(f *zip.File) string {
	raw := f.Name
	if isASCII(raw) {
		return raw
	}
	if !f.NonUTF8 && utf8.ValidString(raw) {
		return raw
	}
	if s, ok := decodeGBK(raw); ok {
		return s
	}
	if utf8.ValidString(raw) {
		return raw
	}
	return strings.ToValidUTF8(raw, "")
}

// storedName is the member name as a code-page-unaware archiver lists it.
func storedName(f *zip.File) string {
	raw := f.Name
	if isASCII(raw) || (!f.NonUTF8 && utf8.ValidString(raw)) {
		return raw
	}
	s, err := charmap.CodePage437.NewDecoder().String(raw)
	if err != nil {
		return strings.ToValidUTF8(raw, "_")
	}
	return s
}

// decodeGBK decodes raw as GBK, failing on any byte sequence that is not GBK.
func decodeGBK(raw string) (string, bool) {
	s, err := simplifiedchinese.GBK.NewDecoder().String(raw)
	if err != nil || strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
