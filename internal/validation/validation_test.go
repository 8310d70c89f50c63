package validation

import (
	"errors"
	"fmt"
	"testing"
)

func ptr[T any](v T) *T {
	return &v
}

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		value   *int64
		want    int64
		wantErr bool
	}{
		{
			name:  "present",
			value: ptr(int64(7)),
			want:  7,
		},
		{
			name:  "zero is present",
			value: ptr(int64(0)),
			want:  0,
		},
		{
			name:    "missing",
			value:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Required("item_id", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Required() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Required() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequiredString(t *testing.T) {
	tests := []struct {
		name    string
		value   *string
		wantErr bool
	}{
		{name: "present", value: ptr("Phone")},
		{name: "blank", value: ptr("   "), wantErr: true},
		{name: "missing", value: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequiredString("name", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RequiredString() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsInvalidInput(t *testing.T) {
	_, err := Required[float64]("price", nil)
	wrapped := fmt.Errorf("add item: %w", err)

	if !IsInvalidInput(wrapped) {
		t.Fatalf("expected wrapped InvalidInputError to be detected")
	}
	if IsInvalidInput(errors.New("boom")) {
		t.Fatalf("plain error must not be treated as invalid input")
	}
	if got := err.Error(); got != "invalid input: price: is required" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestMalformed(t *testing.T) {
	err := Malformed(errors.New("unexpected EOF"))
	if !IsInvalidInput(err) {
		t.Fatalf("Malformed must produce InvalidInputError")
	}
}
