package images

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/fastygo/worklog/domain"
	"github.com/fastygo/worklog/internal/config"
	"github.com/fastygo/worklog/internal/metrics"
)

const maxExtLen = 10

// Upload is one incoming image file.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Storage keeps uploaded images as flat files under one directory, addressed by
// locators of the form <prefix><filename>.
type Storage struct {
	dir      string
	prefix   string
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewStorage prepares the upload directory.
func NewStorage(cfg config.UploadConfig, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	maxBytes := cfg.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Storage{
		dir:      cfg.Dir,
		prefix:   cfg.URLPrefix,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Dir is the directory served under Prefix.
func (s *Storage) Dir() string { return s.dir }

// Prefix is the public URL prefix of every managed locator.
func (s *Storage) Prefix() string { return s.prefix }

// SaveAll stores every upload or none: on the first failure the files written so far are removed.
func (s *Storage) SaveAll(uploads []Upload) ([]string, error) {
	if len(uploads) > domain.MaxImages {
		return nil, domain.ErrTooManyImages
	}
	locators := make([]string, 0, len(uploads))
	for _, u := range uploads {
		locator, err := s.Save(u)
		if err != nil {
			s.RemoveAll(locators)
			return nil, err
		}
		locators = append(locators, locator)
	}
	return locators, nil
}

// Save validates that the upload is an image within the size cap and writes it under a
// generated name.
func (s *Storage) Save(u Upload) (string, error) {
	if u.Open == nil {
		return "", domain.ErrInvalidPayload
	}
	rc, err := u.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "unreadable upload", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxBytes+1))
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "unreadable upload", err)
	}
	if int64(len(data)) > s.maxBytes {
		metrics.RecordImageFile("save", "rejected")
		return "", domain.Invalid("%s exceeds %d bytes", u.Filename, s.maxBytes)
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		metrics.RecordImageFile("save", "rejected")
		return "", domain.ErrNotAnImage
	}

	name := s.filename(u.Filename)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		metrics.RecordImageFile("save", "error")
		return "", err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		metrics.RecordImageFile("save", "error")
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		metrics.RecordImageFile("save", "error")
		return "", err
	}

	metrics.RecordImageFile("save", "ok")
	return s.prefix + name, nil
}

// Remove deletes the file behind a managed locator. Foreign locators are ignored and a
// file that is already gone is not an error.
func (s *Storage) Remove(locator string) error {
	name, ok := s.managedName(locator)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	switch {
	case err == nil:
		metrics.RecordImageFile("remove", "ok")
		return nil
	case errors.Is(err, fs.ErrNotExist):
		metrics.RecordImageFile("remove", "missing")
		return nil
	default:
		metrics.RecordImageFile("remove", "error")
		return err
	}
}

// RemoveAll removes each locator, logging failures instead of returning them.
func (s *Storage) RemoveAll(locators []string) {
	for _, locator := range locators {
		if err := s.Remove(locator); err != nil {
			s.logger.Warn("image cleanup failed", zap.String("locator", locator), zap.Error(err))
		}
	}
}

// Managed reports whether locator points into the upload directory.
func (s *Storage) Managed(locator string) bool {
	_, ok := s.managedName(locator)
	return ok
}

func (s *Storage) managedName(locator string) (string, bool) {
	if !strings.HasPrefix(locator, s.prefix) {
		return "", false
	}
	name := strings.TrimPrefix(locator, s.prefix)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}

// filename builds <unix millis>-<random><ext>, keeping at most maxExtLen characters of a
// plain alphanumeric extension.
func (s *Storage) filename(original string) string {
	return fmt.Sprintf("%d-%d%s", s.now().UnixMilli(), rand.Int63n(1_000_000_000), safeExt(original))
}

func safeExt(original string) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(original, `\`, "/")))
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}
	for _, r := range strings.TrimPrefix(ext, ".") {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	if ext == "." {
		return ""
	}
	return ext
}
