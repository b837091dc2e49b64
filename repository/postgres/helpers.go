package postgres

import (
	"encoding/json"
	"fmt"
	"strings"
)

// encodeImages renders the images_json column. An empty list is stored as "[]" so that
// hydration never falls back to a stale image_path.
func encodeImages(images []string) string {
	if len(images) == 0 {
		return "[]"
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeImages rebuilds the image list from the stored columns. Rows written before
// multi-image support only carry image_path.
func decodeImages(imagesJSON, imagePath *string) []string {
	if imagesJSON != nil && *imagesJSON != "" {
		var images []string
		if err := json.Unmarshal([]byte(*imagesJSON), &images); err == nil && images != nil {
			return images
		}
	}
	if imagePath != nil && *imagePath != "" {
		return []string{*imagePath}
	}
	return []string{}
}

func firstImage(images []string) interface{} {
	if len(images) == 0 {
		return nil
	}
	return images[0]
}

// assignments accumulates "column = $n" fragments for a partial UPDATE.
type assignments struct {
	parts []string
	args  []interface{}
}

func (a *assignments) add(column, cast string, value interface{}) {
	a.args = append(a.args, value)
	a.parts = append(a.parts, fmt.Sprintf("%s = $%d%s", column, len(a.args), cast))
}

func (a *assignments) raw(fragment string) {
	a.parts = append(a.parts, fragment)
}

func (a *assignments) String() string {
	return strings.Join(a.parts, ", ")
}

// next returns the placeholder index for the next positional argument.
func (a *assignments) next() int {
	return len(a.args) + 1
}
