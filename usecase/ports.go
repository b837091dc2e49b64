package usecase

import (
	"github.com/fastygo/worklog/internal/images"
)

// ImageStore abstracts the upload directory so use cases stay storage-agnostic.
type ImageStore interface {
	// SaveAll persists every upload or none of them and returns their locators.
	SaveAll(uploads []images.Upload) ([]string, error)
	// RemoveAll deletes managed files best-effort. Failures are logged, never returned.
	RemoveAll(locators []string)
}
