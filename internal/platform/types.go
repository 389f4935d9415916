// Package platform detects the host the provisioner runs on (OS,
// architecture, Linux distribution) and checks the path environment
// contract required before a run may start. Detection results are
// also exposed to Lua profiles as a read-only table.
package platform

import "context"

// Canonical Linux distribution families.
const (
	FamilyDebian  = "debian" // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"   // RHEL, CentOS, Rocky, AlmaLinux
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch" // Arch, Manjaro
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Distro describes a Linux distribution. Nil on non-Linux hosts or
// when detection failed.
type Distro struct {
	ID      string // e.g. "ubuntu"
	Family  string // canonical family, e.g. "debian"
	Version string // e.g. "24.04"
}

// Info is the detected host platform.
type Info struct {
	OS      string // "linux", "darwin"
	Arch    string // normalized: "amd64", "arm64"
	ArchRaw string // original GOARCH value
	Distro  *Distro
}

// IsLinux reports whether the host runs Linux.
func (i *Info) IsLinux() bool { return i.OS == "linux" }

// IsMacOS reports whether the host runs macOS.
func (i *Info) IsMacOS() bool { return i.OS == "darwin" }

// Family returns the canonical distro family, or FamilyUnknown.
func (i *Info) Family() string {
	if i.Distro == nil {
		return FamilyUnknown
	}
	return i.Distro.Family
}

// IsFamily reports whether the host belongs to the given family.
func (i *Info) IsFamily(family string) bool {
	return i.Distro != nil && i.Distro.Family == family
}

// Detector resolves host platform information.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
