package bookmarks_test

import (
	"errors"
	"fmt"
	"testing"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
)

func wrapped(class bookmarks.ErrorClass) error {
	return fmt.Errorf("fetch bookmarks: %w", &bookmarks.APIError{Status: 403, Class: class})
}

func TestAPIError_ClassFromOtherPackage(t *testing.T) {
	var apiErr *bookmarks.APIError
	if !errors.As(wrapped(bookmarks.ClassCSRF), &apiErr) {
		t.Fatal("expected *APIError")
	}
	switch apiErr.Class {
	case bookmarks.ClassCSRF:
	default:
		t.Fatalf("class = %v, want csrf", apiErr.Class)
	}
	if bookmarks.ClassNone.String() == bookmarks.ClassCSRF.String() {
		t.Fatal("classes must have distinct names")
	}
}
