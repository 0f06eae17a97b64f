package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	t.Cleanup(func() { Version = old })

	if got := Template(); !strings.Contains(got, "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", got)
	}
	if got := String(); !strings.HasPrefix(got, "version: v1.2.3\n") {
		t.Errorf("String() = %q", got)
	}
}
