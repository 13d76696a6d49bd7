// Package catalog holds the stateless helpers shared by the hierarchy,
// product and handler layers: visibility filtering, href resolution and
// offset/limit paging.
package catalog

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
)

var errNoPathSegment = errors.New("no path segment")

// IsVisible reports whether entity is not archived. Values that carry no
// archived flag are always visible.
func IsVisible(entity any) bool {
	a, ok := entity.(model.Archivable)
	if !ok {
		return true
	}
	return !a.IsArchived()
}

// FilterVisible returns the visible elements of items in their original order
func FilterVisible[T any](items []T) []T {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if IsVisible(item) {
			visible = append(visible, item)
		}
	}
	return visible
}

// IDFromResourceURL parses the last path segment of ref as an id.
// Both absolute URLs and bare paths are accepted; empty segments are ignored.
func IDFromResourceURL(ref string) (int64, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return 0, &apperror.MalformedReferenceError{Reference: ref, Cause: err}
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return 0, &apperror.MalformedReferenceError{Reference: ref, Cause: errNoPathSegment}
	}

	id, err := strconv.ParseInt(segments[len(segments)-1], 10, 64)
	if err != nil {
		return 0, &apperror.MalformedReferenceError{Reference: ref, Cause: err}
	}
	return id, nil
}

// Paginate returns the window of items starting at offset holding at most
// limit elements. Negative values count as 0 and a limit of 0 is unbounded.
func Paginate[T any](items []T, offset, limit int) []T {
	offset = max(offset, 0)
	limit = max(limit, 0)

	if offset >= len(items) {
		return items[:0:0]
	}

	end := len(items)
	if limit > 0 {
		end = min(offset+limit, end)
	}
	return items[offset:end]
}
