// Package profile evaluates an optional per-machine Lua profile that
// overrides stored preferences. The profile runs in a sandboxed VM
// with the detected platform injected as a read-only table, so one
// dotfiles repository can carry a single profile that adapts to the
// host:
//
//	return {
//	    editor = "helix",
//	    extra_packages = platform.is_debian_family
//	        and { "build-essential" } or { "base-devel" },
//	}
package profile

import (
	"context"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/benchtop-dev/benchtop/internal/platform"
	"github.com/benchtop-dev/benchtop/internal/prefs"
)

// Overrides holds the preference values a profile sets. Empty fields
// leave the stored preference untouched.
type Overrides struct {
	GitUserName   string
	GitUserEmail  string
	DotfilesRepo  string
	Shell         string
	Editor        string
	Components    []string
	ExtraPackages []string
}

// Apply overlays the overrides onto p.
func (o *Overrides) Apply(p *prefs.Preferences) {
	if o == nil {
		return
	}
	if o.GitUserName != "" {
		p.GitUserName = o.GitUserName
	}
	if o.GitUserEmail != "" {
		p.GitUserEmail = o.GitUserEmail
	}
	if o.DotfilesRepo != "" {
		p.DotfilesRepo = o.DotfilesRepo
	}
	if o.Shell != "" {
		p.Shell = o.Shell
	}
	if o.Editor != "" {
		p.Editor = o.Editor
	}
	if o.Components != nil {
		p.Components = append([]string(nil), o.Components...)
	}
	if o.ExtraPackages != nil {
		p.ExtraPackages = append([]string(nil), o.ExtraPackages...)
	}
}

// Load evaluates the profile at path. A missing file is not an error;
// it returns (nil, nil).
func Load(ctx context.Context, path string, info *platform.Info) (*Overrides, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Evaluate(ctx, string(code), info)
}

// Evaluate runs profile code in a sandboxed VM and extracts the
// returned override table.
func Evaluate(ctx context.Context, code string, info *platform.Info) (*Overrides, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	platform.InjectPlatformTable(L, info)

	if err := L.DoString(code); err != nil {
		return nil, fmt.Errorf("evaluate profile: %w", err)
	}

	ret := L.Get(-1)
	if ret == lua.LNil {
		return &Overrides{}, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("profile must return a table, got %s", ret.Type())
	}

	o := &Overrides{
		GitUserName:  stringField(L, tbl, "git_user_name"),
		GitUserEmail: stringField(L, tbl, "git_user_email"),
		DotfilesRepo: stringField(L, tbl, "dotfiles_repo"),
		Shell:        stringField(L, tbl, "shell"),
		Editor:       stringField(L, tbl, "editor"),
	}

	var err error
	if o.Components, err = stringListField(L, tbl, "components"); err != nil {
		return nil, err
	}
	if o.ExtraPackages, err = stringListField(L, tbl, "extra_packages"); err != nil {
		return nil, err
	}
	return o, nil
}

func stringField(L *lua.LState, tbl *lua.LTable, name string) string {
	v := L.GetField(tbl, name)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

func stringListField(L *lua.LState, tbl *lua.LTable, name string) ([]string, error) {
	v := L.GetField(tbl, name)
	if v == lua.LNil {
		return nil, nil
	}
	list, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("profile field %q must be a list, got %s", name, v.Type())
	}

	var out []string
	var badEntry error
	list.ForEach(func(_, value lua.LValue) {
		if s, ok := value.(lua.LString); ok {
			out = append(out, string(s))
		} else if badEntry == nil {
			badEntry = fmt.Errorf("profile field %q contains a non-string entry (%s)", name, value.Type())
		}
	})
	return out, badEntry
}

// newSandboxedVM creates a Lua state with command execution,
// filesystem access, module loading, and the debug library removed.
// Profiles are declarative; string, table, and math stay available.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()

	for _, name := range []string{
		"os", "io", "require", "dofile", "loadfile", "load", "loadstring", "debug",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
