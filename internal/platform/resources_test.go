package platform

import (
	"context"
	"testing"
)

func TestCheckResources(t *testing.T) {
	r, err := CheckResources(context.Background(), t.TempDir())
	if err != nil {
		t.Skipf("host below minimums or unreadable: %v", err)
	}
	if r.MemoryTotal == 0 {
		t.Error("MemoryTotal = 0")
	}
	if r.DiskFree == 0 {
		t.Error("DiskFree = 0")
	}
}

func TestCheckResourcesBadPath(t *testing.T) {
	_, err := CheckResources(context.Background(), "/nonexistent/path/for/benchtop")
	if err == nil {
		t.Error("expected error for unreadable path")
	}
}
