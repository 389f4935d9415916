package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable exposes the detected platform to a Lua profile
// as a read-only global table named "platform". Call before loading
// any profile code.
func InjectPlatformTable(L *lua.LState, info *Info) {
	tbl := L.NewTable()

	L.SetField(tbl, "os", lua.LString(info.OS))
	L.SetField(tbl, "arch", lua.LString(info.Arch))
	L.SetField(tbl, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(tbl, "is_macos", lua.LBool(info.IsMacOS()))

	if info.Distro != nil {
		distro := L.NewTable()
		L.SetField(distro, "id", lua.LString(info.Distro.ID))
		L.SetField(distro, "family", lua.LString(info.Distro.Family))
		L.SetField(distro, "version", lua.LString(info.Distro.Version))
		L.SetField(tbl, "distro", distro)
	} else {
		L.SetField(tbl, "distro", lua.LNil)
	}

	L.SetField(tbl, "is_debian_family", lua.LBool(info.IsFamily(FamilyDebian)))
	L.SetField(tbl, "is_rhel_family", lua.LBool(info.IsFamily(FamilyRHEL)))
	L.SetField(tbl, "is_fedora_family", lua.LBool(info.IsFamily(FamilyFedora)))
	L.SetField(tbl, "is_arch_family", lua.LBool(info.IsFamily(FamilyArch)))
	L.SetField(tbl, "is_suse_family", lua.LBool(info.IsFamily(FamilySUSE)))

	L.SetGlobal("platform", tbl)
}
