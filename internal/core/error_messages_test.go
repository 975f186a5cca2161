package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/rowmap/internal/mapper"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "missing column",
			err:      &mapper.MappingError{Type: "targets.Customer", Field: "Name", Column: "Name", Err: mapper.ErrMissingColumn},
			wantCode: "MAP001",
		},
		{
			name:     "conversion wrapped by the service",
			err:      fmt.Errorf("run ar_aging: %w", &mapper.MappingError{Err: fmt.Errorf("%w: bad", mapper.ErrConvert)}),
			wantCode: "MAP002",
		},
		{
			name:     "enum",
			err:      &mapper.MappingError{Err: mapper.ErrEnum},
			wantCode: "MAP003",
		},
		{
			name:     "row count",
			err:      &mapper.MappingError{Err: mapper.ErrRowCount},
			wantCode: "MAP005",
		},
		{
			name:     "no rows",
			err:      fmt.Errorf("run customer: %w", &mapper.MappingError{Err: fmt.Errorf("%w: want exactly 1 row, got 0", mapper.ErrNoRows)}),
			wantCode: "MAP008",
		},
		{
			name:     "query not found",
			err:      fmt.Errorf("%w: nope", ErrQueryNotFound),
			wantCode: "QRY001",
		},
		{
			name:     "argument count",
			err:      fmt.Errorf("%w: got 0, want 1", ErrArgCount),
			wantCode: "QRY002",
		},
		{
			name:     "invalid argument",
			err:      fmt.Errorf("parameter as_of: %w", ErrInvalidArg),
			wantCode: "QRY002",
		},
		{
			name:     "deadline exceeded",
			err:      fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantCode: "DB006",
		},
		{
			name:     "cancelled",
			err:      context.Canceled,
			wantCode: "REQ001",
		},
		{
			name:     "connection refused pattern",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: "DB004",
		},
		{
			name:     "case insensitive pattern",
			err:      errors.New("ERROR: Relation \"x\" DOES NOT EXIST"),
			wantCode: "DB008",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := fmt.Errorf("%w: nope", ErrQueryNotFound)
	result := FormatUserError(err)

	expected := "Query not found (Code: QRY001). List the available queries and check the key"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("deadlock detected"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
