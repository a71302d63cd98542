package chi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/symcheck/internal/domain"
	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
)

// maxFormMemory caps the in-memory portion of multipart parsing; larger
// parts spill to temp files.
const maxFormMemory = 4 << 20

var errMalformedForm = errors.New("malformed multipart form")

var allowedImageExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

const uploadTypeWarning = "uploaded file type not allowed; allowed: png, jpg, jpeg, gif"

// inputFromMultipart parses a multipart submission. A disallowed image
// type is not fatal: the upload is skipped and reported as a warning,
// matching the tolerant intake posture of the rest of the pipeline.
func (s *Server) inputFromMultipart(w http.ResponseWriter, r *http.Request) (assessment.Input, []string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return assessment.Input{}, nil, fmt.Errorf("%w: body over %d bytes", domain.ErrUploadTooLarge, maxErr.Limit)
		}
		return assessment.Input{}, nil, fmt.Errorf("%w: %w", errMalformedForm, err)
	}

	input := assessment.Input{
		Text:       r.PostFormValue("symptoms_text"),
		Selections: r.PostForm["symptoms_check"],
		Duration:   r.PostFormValue("duration"),
		Severity:   r.PostFormValue("severity"),
		Age:        r.PostFormValue("age"),
		Sex:        r.PostFormValue("sex"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return input, nil, nil
	case err != nil:
		return assessment.Input{}, nil, fmt.Errorf("%w: %w", errMalformedForm, err)
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		return input, nil, nil
	}

	var warnings []string
	stored, err := s.saveUpload(file, header.Filename)
	switch {
	case errors.Is(err, domain.ErrUploadType):
		warnings = append(warnings, uploadTypeWarning)
	case err != nil:
		return assessment.Input{}, nil, fmt.Errorf("save upload: %w", err)
	default:
		input.Image = stored
	}

	return input, warnings, nil
}

// saveUpload stores an uploaded image under a collision-free name and
// returns that name. Files whose extension is not in the allow-list are
// rejected with ErrUploadType before anything touches disk.
func (s *Server) saveUpload(file multipart.File, original string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(original), "."))
	if _, ok := allowedImageExts[ext]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUploadType, ext)
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	name := newUploadID() + "_" + sanitizeFilename(original)
	dst, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// sanitizeFilename strips path components and maps every rune outside
// [A-Za-z0-9._-] to an underscore, so stored names are shell and
// filesystem safe regardless of what the client sent.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, base)
	return strings.Trim(mapped, "._")
}

// newUploadID returns a compact 32-character hex identifier.
func newUploadID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
