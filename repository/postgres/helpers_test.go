package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestEncodeImages(t *testing.T) {
	assert.Equal(t, "[]", encodeImages(nil))
	assert.Equal(t, `["/uploads/a.png","/uploads/b.png"]`, encodeImages([]string{"/uploads/a.png", "/uploads/b.png"}))
}

func TestDecodeImages(t *testing.T) {
	tests := []struct {
		name       string
		imagesJSON *string
		imagePath  *string
		want       []string
	}{
		{"list wins", strPtr(`["/uploads/a.png"]`), strPtr("/uploads/old.png"), []string{"/uploads/a.png"}},
		{"explicit empty list", strPtr(`[]`), strPtr("/uploads/old.png"), []string{}},
		{"legacy single image", nil, strPtr("/uploads/old.png"), []string{"/uploads/old.png"}},
		{"corrupt list falls back", strPtr(`{oops`), strPtr("/uploads/old.png"), []string{"/uploads/old.png"}},
		{"nothing", nil, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeImages(tt.imagesJSON, tt.imagePath))
		})
	}
}

func TestAssignments(t *testing.T) {
	var set assignments
	set.add("title", "", "x")
	set.add("task_date", "::date", "2024-06-15")
	set.raw("updated_at = NOW()")

	assert.Equal(t, "title = $1, task_date = $2::date, updated_at = NOW()", set.String())
	assert.Equal(t, []interface{}{"x", "2024-06-15"}, set.args)
	assert.Equal(t, 3, set.next())
}

func TestFirstImage(t *testing.T) {
	assert.Nil(t, firstImage(nil))
	assert.Equal(t, "/uploads/a.png", firstImage([]string{"/uploads/a.png", "/uploads/b.png"}))
}
