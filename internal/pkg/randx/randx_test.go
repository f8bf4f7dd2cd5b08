package randx

import (
	"strings"
	"testing"
)

func TestConnectionIDFormat(t *testing.T) {
	id, err := ConnectionID()
	if err != nil {
		t.Fatalf("ConnectionID: %v", err)
	}

	if !strings.HasPrefix(id, ConnIDPrefix) {
		t.Errorf("id %q lacks prefix %q", id, ConnIDPrefix)
	}
	if len(id) != len(ConnIDPrefix)+ConnIDRawLength {
		t.Errorf("id %q has length %d, want %d", id, len(id), len(ConnIDPrefix)+ConnIDRawLength)
	}
	if !IsValidConnectionID(id) {
		t.Errorf("generated id %q fails validation", id)
	}
}

func TestConnectionIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for range 1000 {
		id, err := ConnectionID()
		if err != nil {
			t.Fatalf("ConnectionID: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate connection id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsValidConnectionID(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"conn_AbC123xYz9", true},
		{"conn_0000000000", true},
		{"AbC123xYz9", false},
		{"conn_short", false},
		{"conn_AbC123xYz9x", false},
		{"conn_AbC123xY/9", false},
		{"sess_AbC123xYz9", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsValidConnectionID(tc.id); got != tc.valid {
			t.Errorf("IsValidConnectionID(%q) = %v, want %v", tc.id, got, tc.valid)
		}
	}
}

func TestMessageID(t *testing.T) {
	a := MessageID()
	b := MessageID()

	if len(a) != 36 {
		t.Errorf("MessageID() = %q, want UUID form", a)
	}
	if a == b {
		t.Error("consecutive message ids collided")
	}
}
