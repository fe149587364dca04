package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClass(t *testing.T) {
	base := errors.New("boom")
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&FetchError{Op: "fetchDetail", URL: "https://x", StatusCode: 404}, "fetch"},
		{&ParseError{Op: "fetchDetail", Input: "https://x", Err: ErrMissingElement}, "parse"},
		{&StoreError{Op: "create", Kind: "category", Input: "RPG", Err: base}, "store"},
		{fmt.Errorf("wrapped: %w", &StoreError{Op: "upload", Err: base}), "store"},
		{base, "other"},
	}
	for _, tc := range cases {
		if got := ErrorClass(tc.err); got != tc.want {
			t.Errorf("ErrorClass(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	err := &ParseError{Op: "fetchDetail", Input: "page", Err: ErrMissingElement}
	if !errors.Is(err, ErrMissingElement) {
		t.Fatal("ParseError should unwrap to ErrMissingElement")
	}

	se := &StoreError{Op: "findByTitle", Kind: "game", Input: "Title X", Err: ErrNotFound}
	if !errors.Is(se, ErrNotFound) {
		t.Fatal("StoreError should unwrap to ErrNotFound")
	}

	fe := &FetchError{Op: "fetchCatalogPage", URL: "https://catalog", StatusCode: 503}
	if got := fe.Error(); got != "fetchCatalogPage: GET https://catalog: status 503" {
		t.Fatalf("unexpected message %q", got)
	}
}
