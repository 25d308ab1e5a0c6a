package filestore

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"storefront-backend/internal/domain"
)

// Store saves uploaded product images on local disk. Only the generated
// reference (file name) is handed back to callers; the catalog persists the
// reference, never bytes.
type Store struct {
	dir    string
	logger *log.Logger
}

// New ensures the upload directory exists and returns a Store.
func New(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory files are stored in, for static serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes an uploaded file under a fresh unique name and returns the
// reference. The original extension must be an accepted image extension.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !domain.ValidImageRef(ext) {
		return "", domain.NewValidationError("image", "must be a jpg, jpeg, png or gif file")
	}

	ref := uuid.NewString() + ext
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", ref, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", ref, err)
	}
	s.logger.Printf("filestore: saved %s (%d bytes)", ref, fh.Size)
	return ref, nil
}

// Delete removes a stored file. It returns true when the file existed and was
// removed; a missing file is not an error.
func (s *Store) Delete(ref string) bool {
	if ref == "" {
		return false
	}
	// refs are bare file names; refuse anything trying to escape the dir
	if filepath.Base(ref) != ref {
		return false
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil {
		return false
	}
	s.logger.Printf("filestore: deleted %s", ref)
	return true
}

// URL builds the public URL for a stored reference.
func URL(host, ref string) string {
	if ref == "" {
		return ""
	}
	return strings.TrimRight(host, "/") + "/uploads/" + ref
}
