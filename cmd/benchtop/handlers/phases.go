package handlers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/benchtop-dev/benchtop/internal/fetch"
	"github.com/benchtop-dev/benchtop/internal/gitcfg"
	"github.com/benchtop-dev/benchtop/internal/pkgmgr"
	"github.com/benchtop-dev/benchtop/internal/platform"
	"github.com/benchtop-dev/benchtop/internal/prefs"
	"github.com/benchtop-dev/benchtop/internal/profile"
	"github.com/benchtop-dev/benchtop/internal/report"
	"github.com/benchtop-dev/benchtop/internal/run"
	"github.com/benchtop-dev/benchtop/internal/wizard"
	"github.com/benchtop-dev/benchtop/internal/workspace"
)

// Factory function variables - can be replaced in tests.
var (
	detectManager = pkgmgr.Detect
	runWizard     = wizard.Run
	seedDotfiles  = gitcfg.Seed
	justArtifact  = justRequest
)

// setupEnv carries the dependencies and the state accumulated across
// phases of one run. Steps communicate only through it.
type setupEnv struct {
	opts     SetupOptions
	paths    *platform.Paths
	ws       *workspace.Workspace
	reporter report.Reporter
	log      logr.Logger

	detector   platform.Detector
	store      *prefs.Store
	downloader *fetch.Downloader

	// Filled in as phases progress.
	info *platform.Info
	mgr  pkgmgr.Manager
	p    prefs.Preferences
}

// phases assembles the four-phase plan. Severity is declared here, at
// the call site, not by the operations themselves.
func (e *setupEnv) phases() []run.Phase {
	return []run.Phase{
		{
			Name: "preflight",
			Steps: []run.Step{
				{Name: "detect platform", Severity: run.Fatal, Action: e.detectPlatform},
				{Name: "check required tools", Severity: run.Fatal, Action: e.checkTools},
				{Name: "detect package manager", Severity: run.Fatal, Action: e.detectPackageManager},
				{Name: "check host resources", Severity: run.Soft, Action: e.checkResources},
			},
		},
		{
			Name: "configuration",
			Steps: []run.Step{
				{Name: "collect preferences", Severity: run.Fatal, Action: e.collectPreferences},
				{Name: "apply machine profile", Severity: run.Soft, Action: e.applyProfile},
				{Name: "save preferences", Severity: run.Soft, Action: e.savePreferences},
			},
		},
		{
			Name: "installation",
			Steps: []run.Step{
				{Name: "refresh package index", Severity: run.Soft, Action: e.refreshIndex},
				{Name: "install packages", Severity: run.Fatal, Action: e.installPackages},
				{Name: "install starship prompt", Severity: run.Soft, Action: e.installStarship},
				{Name: "install just runner", Severity: run.Soft, Action: e.installJust},
				{Name: "write git identity", Severity: run.Soft, Action: e.writeGitIdentity},
				{Name: "seed dotfiles", Severity: run.Soft, Action: e.seedDotfiles},
			},
		},
		{
			Name: "finalize",
			Steps: []run.Step{
				{Name: "clean package caches", Severity: run.Soft, Action: e.cleanCaches},
			},
		},
	}
}

func (e *setupEnv) detectPlatform(ctx context.Context) error {
	info, err := e.detector.Detect(ctx)
	if err != nil {
		return err
	}
	e.info = info
	if info.Distro != nil {
		e.log.Info("platform detected", "os", info.OS, "arch", info.Arch,
			"distro", info.Distro.ID, "version", info.Distro.Version)
	} else {
		e.log.Info("platform detected", "os", info.OS, "arch", info.Arch)
	}
	return nil
}

func (e *setupEnv) checkTools(context.Context) error {
	return pkgmgr.CheckTools(pkgmgr.BaseTools()).Err()
}

func (e *setupEnv) detectPackageManager(context.Context) error {
	mgr, err := detectManager()
	if err != nil {
		return err
	}
	e.mgr = mgr
	e.log.Info("package manager detected", "name", mgr.Name())
	return nil
}

func (e *setupEnv) checkResources(ctx context.Context) error {
	r, err := platform.CheckResources(ctx, e.paths.InstallRoot)
	if err != nil {
		return err
	}
	e.log.Info("host resources", "memory_mib", r.MemoryTotal>>20, "disk_free_mib", r.DiskFree>>20)
	return nil
}

func (e *setupEnv) collectPreferences(ctx context.Context) error {
	seed, err := e.store.Load()
	if err != nil {
		return err
	}

	if e.opts.NonInteractive {
		e.p, err = wizard.Resolve(seed)
		return err
	}
	e.p, err = runWizard(ctx, seed)
	return err
}

func (e *setupEnv) applyProfile(ctx context.Context) error {
	path := e.opts.ProfilePath
	if path == "" {
		path = filepath.Join(e.paths.ConfigDir, "benchtop", "profile.lua")
	}

	o, err := profile.Load(ctx, path, e.info)
	if err != nil {
		return err
	}
	if o == nil {
		return nil
	}
	o.Apply(&e.p)
	e.log.Info("machine profile applied", "path", path)
	return nil
}

func (e *setupEnv) savePreferences(context.Context) error {
	return e.store.Save(e.p)
}

func (e *setupEnv) refreshIndex(ctx context.Context) error {
	return e.mgr.Update(ctx)
}

func (e *setupEnv) installPackages(ctx context.Context) error {
	names := wizard.PackagesFor(e.p.Components)
	names = append(names, e.p.ExtraPackages...)
	if len(names) == 0 {
		return nil
	}
	e.log.Info("installing packages", "count", len(names))
	return e.mgr.Install(ctx, names)
}

func (e *setupEnv) installStarship(ctx context.Context) error {
	stage, err := e.ws.Stage("starship")
	if err != nil {
		return err
	}

	req, err := starshipRequest(e.info, stage)
	if err != nil {
		return err
	}

	res, err := e.downloader.Fetch(ctx, req)
	if err != nil {
		return err
	}
	if !res.Verified {
		e.log.Info("starship archive accepted without checksum verification")
	}

	dest := filepath.Join(e.paths.BinDir, "starship")
	if err := fetch.ExtractFile(res.Path, dest, "starship"); err != nil {
		return fmt.Errorf("extract starship: %w", err)
	}
	return nil
}

// installJust unpacks the whole archive (man page, completions) into
// the library root and places the binary on the bin path.
func (e *setupEnv) installJust(ctx context.Context) error {
	stage, err := e.ws.Stage("just")
	if err != nil {
		return err
	}

	req, err := justArtifact(e.info, stage)
	if err != nil {
		return err
	}

	res, err := e.downloader.Fetch(ctx, req)
	if err != nil {
		return err
	}

	libDir := filepath.Join(e.paths.LibraryRoot, "just-"+justVersion)
	if err := fetch.ExtractTarGz(res.Path, libDir); err != nil {
		return fmt.Errorf("unpack just archive: %w", err)
	}

	dest := filepath.Join(e.paths.BinDir, "just")
	if err := fetch.ExtractFile(res.Path, dest, "just"); err != nil {
		return fmt.Errorf("extract just binary: %w", err)
	}
	return nil
}

func (e *setupEnv) writeGitIdentity(context.Context) error {
	path := filepath.Join(e.paths.ConfigDir, "git", "config")
	return gitcfg.WriteIdentity(path, gitcfg.Identity{
		Name:  e.p.GitUserName,
		Email: e.p.GitUserEmail,
	})
}

func (e *setupEnv) seedDotfiles(ctx context.Context) error {
	if e.p.DotfilesRepo == "" {
		e.log.Info("no dotfiles repository configured, skipping")
		return nil
	}
	dest := filepath.Join(e.paths.DataDir, "dotfiles")
	return seedDotfiles(ctx, e.p.DotfilesRepo, dest)
}

func (e *setupEnv) cleanCaches(ctx context.Context) error {
	return e.mgr.Cleanup(ctx)
}
