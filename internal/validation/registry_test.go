package validation

import (
	"fmt"
	"testing"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		validator string
		value     string
		wantErr   bool
	}{
		{"uuid", "0b36a95e-7f50-45a4-92e0-ba42e46e4c6b", false},
		{"uuid", "nope", true},
		{"url", "https://example.com/path", false},
		{"url", "example.com", true},
		{"phone_e164", "+447911123456", false},
		{"phone_e164", "07911123456", true},
		{"non_negative", "0", false},
		{"non_negative", "-1", true},
		{"non_negative", "abc", true},
		{"iso_country", "GB", false},
		{"iso_country", "gbr", true},
	}

	for _, tc := range cases {
		fn, ok := r.Lookup(tc.validator)
		if !ok {
			t.Fatalf("validator %q not registered", tc.validator)
		}
		err := fn(tc.value)
		if tc.wantErr && err == nil {
			t.Fatalf("%s(%q): expected error", tc.validator, tc.value)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s(%q): unexpected error: %v", tc.validator, tc.value, err)
		}
	}
}

func TestRegistryKnownAndNames(t *testing.T) {
	r := NewRegistry()

	if !r.Known("uuid") {
		t.Fatalf("expected uuid to be known")
	}
	if r.Known("made_up") {
		t.Fatalf("did not expect made_up to be known")
	}

	r.Register("always_fails", func(string) error { return fmt.Errorf("no") })
	if !r.Known("always_fails") {
		t.Fatalf("expected registered validator to be known")
	}

	names := r.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("expected sorted names, got %v", names)
		}
	}
}
