// Package images reconciles the image list of a task with files in the upload directory.
package images

import (
	"github.com/fastygo/worklog/domain"
)

// Intent classifies what a request does to a task's images.
type Intent int

const (
	IntentNone Intent = iota
	IntentReplace
	IntentClear
	IntentRemoveOne
)

func (i Intent) String() string {
	switch i {
	case IntentReplace:
		return "replace"
	case IntentClear:
		return "clear"
	case IntentRemoveOne:
		return "remove_one"
	default:
		return "none"
	}
}

// Decision is the new image list plus the files that become unreferenced by it.
// Delete must only be acted on after the new list is persisted.
type Decision struct {
	Intent Intent
	Images domain.Field[[]string]
	Delete []string
}

// Plan resolves a patch's image intent. Uploads take precedence over the clear flag.
func Plan(current, uploaded []string, clear bool) (Decision, error) {
	if len(uploaded) > domain.MaxImages {
		return Decision{}, domain.ErrTooManyImages
	}

	switch {
	case len(uploaded) > 0:
		next := append([]string{}, uploaded...)
		return Decision{
			Intent: IntentReplace,
			Images: domain.SetTo(next),
			Delete: unreferenced(current, next),
		}, nil
	case clear:
		return Decision{
			Intent: IntentClear,
			Images: domain.SetTo([]string{}),
			Delete: unreferenced(current, nil),
		}, nil
	default:
		return Decision{Intent: IntentNone, Images: domain.Keep[[]string]()}, nil
	}
}

// PlanRemoval drops one locator from the list. A locator that is not attached is a no-op.
func PlanRemoval(current []string, locator string) Decision {
	remaining := make([]string, 0, len(current))
	found := false
	for _, img := range current {
		if img == locator {
			found = true
			continue
		}
		remaining = append(remaining, img)
	}
	if !found {
		return Decision{Intent: IntentNone, Images: domain.Keep[[]string]()}
	}
	return Decision{
		Intent: IntentRemoveOne,
		Images: domain.SetTo(remaining),
		Delete: []string{locator},
	}
}

// unreferenced returns the entries of previous that next no longer holds, without duplicates.
func unreferenced(previous, next []string) []string {
	keep := make(map[string]struct{}, len(next))
	for _, img := range next {
		keep[img] = struct{}{}
	}
	var out []string
	for _, img := range previous {
		if _, ok := keep[img]; ok || img == "" {
			continue
		}
		keep[img] = struct{}{}
		out = append(out, img)
	}
	return out
}
