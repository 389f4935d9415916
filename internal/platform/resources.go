package platform

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Minimum host resources for a provisioning run. Below these the run
// warns rather than aborts; the installs themselves will fail with a
// clearer error if space actually runs out.
const (
	MinMemoryBytes = 1 << 30     // 1 GiB
	MinDiskBytes   = 2 << 30     // 2 GiB free under the install root
)

// Resources is a snapshot of the host capacity relevant to a run.
type Resources struct {
	MemoryTotal uint64
	DiskFree    uint64
}

// CheckResources samples memory and free disk space under path and
// compares them against the minimums. The snapshot is returned even
// when the check fails.
func CheckResources(ctx context.Context, path string) (*Resources, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read memory info: %w", err)
	}

	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read disk usage for %s: %w", path, err)
	}

	r := &Resources{
		MemoryTotal: vm.Total,
		DiskFree:    usage.Free,
	}

	if r.MemoryTotal < MinMemoryBytes {
		return r, fmt.Errorf("host has %d MiB of memory, need at least %d MiB",
			r.MemoryTotal>>20, MinMemoryBytes>>20)
	}
	if r.DiskFree < MinDiskBytes {
		return r, fmt.Errorf("only %d MiB free under %s, need at least %d MiB",
			r.DiskFree>>20, path, MinDiskBytes>>20)
	}
	return r, nil
}
