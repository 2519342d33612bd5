package blob

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/bergason/inventory/internal/domain"
)

// Kinds partition the store; each maps to one directory under the root.
const (
	KindPhotos         = "photos"
	KindDocuments      = "documents"
	KindPropertyPhotos = "property_photos"
	KindSignatures     = "signatures"
)

var kinds = map[string]bool{
	KindPhotos:         true,
	KindDocuments:      true,
	KindPropertyPhotos: true,
	KindSignatures:     true,
}

const thumbnailWidth = 200

// FileStore persists blobs on the local filesystem and hands out stable
// references of the form /uploads/<kind>/<name>. Callers only ever store and
// forward the reference; the layout underneath is this package's business.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	for kind := range kinds {
		if err := os.MkdirAll(filepath.Join(root, kind), 0o755); err != nil {
			return nil, err
		}
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Store(ctx context.Context, kind, ext string, data []byte) (string, error) {
	if !kinds[kind] {
		return "", fmt.Errorf("unknown blob kind: %s", kind)
	}
	if len(data) == 0 {
		return "", domain.ValidationError{Reason: "empty file"}
	}

	name := uuid.NewString() + normalizeExt(ext)
	if err := os.WriteFile(filepath.Join(s.root, kind, name), data, 0o644); err != nil {
		return "", err
	}

	return Ref(kind, name), nil
}

// StoreThumbnail renders a fixed-width JPEG preview of an image blob and
// stores it alongside the original.
func (s *FileStore) StoreThumbnail(ctx context.Context, kind string, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	return s.Store(ctx, kind, ".jpg", buf.Bytes())
}

// Remove deletes a stored blob by its reference.
func (s *FileStore) Remove(ctx context.Context, ref string) error {
	rest, ok := strings.CutPrefix(ref, "/uploads/")
	if !ok {
		return domain.NotFoundError{Resource: "file"}
	}
	kind, name, ok := strings.Cut(rest, "/")
	if !ok {
		return domain.NotFoundError{Resource: "file"}
	}

	path, err := s.Path(kind, name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Path maps a kind/name pair back to the file on disk, refusing anything
// that would escape the store.
func (s *FileStore) Path(kind, name string) (string, error) {
	if !kinds[kind] {
		return "", domain.NotFoundError{Resource: "file"}
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", domain.NotFoundError{Resource: "file"}
	}

	path := filepath.Join(s.root, kind, name)
	if _, err := os.Stat(path); err != nil {
		return "", domain.NotFoundError{Resource: "file"}
	}
	return path, nil
}

// Ref composes the stable reference for a stored blob.
func Ref(kind, name string) string {
	return "/uploads/" + kind + "/" + name
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	// Anything exotic gets dropped rather than trusted.
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if len(ext) > 8 {
		return ""
	}
	return ext
}
