package external

import (
	"testing"
)

func TestIsExternal(t *testing.T) {
	c := New("/project/src/index.js")

	tests := []struct {
		ref      string
		expected bool
	}{
		{"./sibling", false},
		{"../parent/util", false},
		{".", false},
		{"..", false},
		{"/abs/path/x", false},
		{"/project/src/index.js", false},
		{"lodash", true},
		{"lodash/fp", true},
		{"@scope/pkg", true},
		{"node:fs", true},
		{".hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := c.IsExternal(tt.ref); got != tt.expected {
				t.Errorf("IsExternal(%q) = %v, want %v", tt.ref, got, tt.expected)
			}
		})
	}
}

func TestIsExternal_BareInputIsRoot(t *testing.T) {
	c := New("src/index.js")

	if c.IsExternal("src/index.js") {
		t.Error("entry input must never be external")
	}
	if !c.IsExternal("src/other.js") {
		t.Error("bare reference other than the input must be external")
	}
}

func TestIsBuiltin(t *testing.T) {
	for _, ref := range []string{"fs", "fs/promises", "node:fs", "node:test", "path", "worker_threads"} {
		if !IsBuiltin(ref) {
			t.Errorf("IsBuiltin(%q) = false, want true", ref)
		}
	}
	for _, ref := range []string{"lodash", "@scope/fs", "fsevents", "react-dom/client"} {
		if IsBuiltin(ref) {
			t.Errorf("IsBuiltin(%q) = true, want false", ref)
		}
	}
}
