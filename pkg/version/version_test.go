package version

import "testing"

func TestVersionSet(t *testing.T) {
	if Version == "" {
		t.Error("Version must never be empty")
	}
}
