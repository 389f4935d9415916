package platform

import (
	"context"
	"runtime"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestNormalizeArch(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"amd64", "amd64", true},
		{"x86_64", "amd64", true},
		{"arm64", "arm64", true},
		{"aarch64", "arm64", true},
		{"mips", "", false},
	}

	for _, tc := range cases {
		got, err := normalizeArch(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("normalizeArch(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("normalizeArch(%q) expected error", tc.in)
		}
	}
}

func TestMapFamily(t *testing.T) {
	if got := mapFamily("Debian"); got != FamilyDebian {
		t.Errorf("mapFamily(Debian) = %q", got)
	}
	if got := mapFamily("manjaro"); got != FamilyArch {
		t.Errorf("mapFamily(manjaro) = %q", got)
	}
	if got := mapFamily("plan9"); got != FamilyUnknown {
		t.Errorf("mapFamily(plan9) = %q", got)
	}
}

func TestDetectReturnsHostInfo(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if info.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", info.OS, runtime.GOOS)
	}
	if info.Arch != "amd64" && info.Arch != "arm64" {
		t.Errorf("unexpected normalized arch %q", info.Arch)
	}
}

func TestInfoFamilyHelpers(t *testing.T) {
	info := &Info{OS: "linux", Distro: &Distro{ID: "ubuntu", Family: FamilyDebian, Version: "24.04"}}

	if !info.IsFamily(FamilyDebian) {
		t.Error("expected debian family")
	}
	if info.IsFamily(FamilyArch) {
		t.Error("unexpected arch family")
	}

	bare := &Info{OS: "darwin"}
	if bare.Family() != FamilyUnknown {
		t.Errorf("Family() = %q, want unknown", bare.Family())
	}
}

func TestInjectPlatformTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:   "linux",
		Arch: "amd64",
		Distro: &Distro{
			ID:      "fedora",
			Family:  FamilyFedora,
			Version: "41",
		},
	}
	InjectPlatformTable(L, info)

	if err := L.DoString(`
		assert(platform.os == "linux")
		assert(platform.arch == "amd64")
		assert(platform.is_linux == true)
		assert(platform.is_fedora_family == true)
		assert(platform.is_debian_family == false)
		assert(platform.distro.id == "fedora")
		assert(platform.distro.version == "41")
	`); err != nil {
		t.Fatalf("platform table assertions failed: %v", err)
	}
}

func TestInjectPlatformTableWithoutDistro(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	InjectPlatformTable(L, &Info{OS: "darwin", Arch: "arm64"})

	if err := L.DoString(`
		assert(platform.is_macos == true)
		assert(platform.distro == nil)
	`); err != nil {
		t.Fatalf("platform table assertions failed: %v", err)
	}
}

func TestPathsFromEnv(t *testing.T) {
	t.Run("all variables present", func(t *testing.T) {
		t.Setenv(EnvInstallRoot, "/opt/benchtop")
		t.Setenv(EnvLibraryRoot, "/opt/benchtop/lib")
		t.Setenv(EnvCacheHome, "/home/dev/.cache")
		t.Setenv(EnvConfigHome, "/home/dev/.config")
		t.Setenv(EnvDataHome, "/home/dev/.local/share")
		t.Setenv(EnvBinHome, "/home/dev/.local/bin")

		p, err := PathsFromEnv()
		if err != nil {
			t.Fatalf("PathsFromEnv failed: %v", err)
		}
		if p.InstallRoot != "/opt/benchtop" {
			t.Errorf("InstallRoot = %q", p.InstallRoot)
		}
		if p.BinDir != "/home/dev/.local/bin" {
			t.Errorf("BinDir = %q", p.BinDir)
		}
	})

	t.Run("missing variables are all named", func(t *testing.T) {
		t.Setenv(EnvInstallRoot, "/opt/benchtop")
		t.Setenv(EnvLibraryRoot, "")
		t.Setenv(EnvCacheHome, "/home/dev/.cache")
		t.Setenv(EnvConfigHome, "/home/dev/.config")
		t.Setenv(EnvDataHome, "/home/dev/.local/share")
		t.Setenv(EnvBinHome, "")

		_, err := PathsFromEnv()
		if err == nil {
			t.Fatal("expected error for missing variables")
		}
		for _, name := range []string{EnvLibraryRoot, EnvBinHome} {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error %q does not name %s", err, name)
			}
		}
	})
}
