package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/worklog/domain"
)

func TestPlan(t *testing.T) {
	current := []string{"/uploads/old1.png", "/uploads/old2.png"}

	tests := []struct {
		name       string
		uploaded   []string
		clear      bool
		wantIntent Intent
		wantState  domain.FieldState
		wantImages []string
		wantDelete []string
	}{
		{
			name:       "no change keeps list and deletes nothing",
			wantIntent: IntentNone,
			wantState:  domain.FieldKeep,
		},
		{
			name:       "uploads replace every stored image",
			uploaded:   []string{"/uploads/new.png"},
			wantIntent: IntentReplace,
			wantState:  domain.FieldSet,
			wantImages: []string{"/uploads/new.png"},
			wantDelete: current,
		},
		{
			name:       "clear empties the list",
			clear:      true,
			wantIntent: IntentClear,
			wantState:  domain.FieldSet,
			wantImages: []string{},
			wantDelete: current,
		},
		{
			name:       "uploads win over clear",
			uploaded:   []string{"/uploads/new.png"},
			clear:      true,
			wantIntent: IntentReplace,
			wantState:  domain.FieldSet,
			wantImages: []string{"/uploads/new.png"},
			wantDelete: current,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Plan(current, tt.uploaded, tt.clear)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIntent, d.Intent)
			assert.Equal(t, tt.wantState, d.Images.State())
			if tt.wantState == domain.FieldSet {
				got, _ := d.Images.Value()
				assert.Equal(t, tt.wantImages, got)
			}
			assert.Equal(t, tt.wantDelete, d.Delete)
		})
	}
}

func TestPlanRejectsTooManyUploads(t *testing.T) {
	_, err := Plan(nil, make([]string, domain.MaxImages+1), false)
	assert.ErrorIs(t, err, domain.ErrTooManyImages)
}

func TestPlanClearOnEmptyListDeletesNothing(t *testing.T) {
	d, err := Plan(nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, IntentClear, d.Intent)
	assert.Empty(t, d.Delete)
}

func TestPlanNeverDeletesAReferencedFile(t *testing.T) {
	d, err := Plan([]string{"/uploads/a.png", "/uploads/b.png"}, []string{"/uploads/b.png"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.png"}, d.Delete)
}

func TestPlanRemoval(t *testing.T) {
	current := []string{"/uploads/a.png", "/uploads/b.png", "/uploads/c.png"}

	d := PlanRemoval(current, "/uploads/b.png")
	assert.Equal(t, IntentRemoveOne, d.Intent)
	got, ok := d.Images.Value()
	require.True(t, ok)
	assert.Equal(t, []string{"/uploads/a.png", "/uploads/c.png"}, got)
	assert.Equal(t, []string{"/uploads/b.png"}, d.Delete)
	assert.Len(t, current, 3)

	noop := PlanRemoval(current, "/uploads/zzz.png")
	assert.Equal(t, IntentNone, noop.Intent)
	assert.Equal(t, domain.FieldKeep, noop.Images.State())
	assert.Empty(t, noop.Delete)
}
