package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/modpick/internal/logger"
	"github.com/glorpus-work/modpick/pkg/errors"
	"github.com/glorpus-work/modpick/pkg/model"
)

// chain carries what every level of one install chain shares.
type chain struct {
	catalog *model.Catalog
	visited map[string]struct{}
}

func newChain(cat *model.Catalog) *chain {
	return &chain{catalog: cat, visited: make(map[string]struct{})}
}

// visit marks name as handled and reports whether it was new.
func (c *chain) visit(name string) bool {
	if _, ok := c.visited[name]; ok {
		return false
	}
	c.visited[name] = struct{}{}
	return true
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Install downloads target and, depth-first in declared order, every
// dependency it names in cat. The first failure stops the whole chain and is
// returned together with the transcript collected so far. Files written
// before the failure stay in place.
func (o *Orchestrator) Install(ctx context.Context, target model.Package, cat *model.Catalog) (Report, error) {
	if o.DL == nil {
		return Report{}, fmt.Errorf("download client is not configured")
	}
	if o.FS == nil {
		return Report{}, fmt.Errorf("filesystem is not configured")
	}

	c := newChain(cat)
	c.visit(target.Name)
	report, err := o.install(ctx, c, target, false, Report{})
	if err != nil {
		emit(o.Hooks, Event{Phase: "error", ID: target.Name, Msg: err.Error()})
		logger.Error("Install failed", logger.Fields{"package": target.Name, "error": err})
		return report, err
	}
	emit(o.Hooks, Event{Phase: "done", ID: target.Name})
	logger.Success("Install finished", logger.Fields{"package": target.Name, "installed": report.Installed})
	return report, nil
}

func (o *Orchestrator) install(ctx context.Context, c *chain, pkg model.Package, isDependency bool, report Report) (Report, error) {
	emit(o.Hooks, Event{Phase: "fetching", ID: pkg.Name, Msg: pkg.DownloadURL})
	logger.Debug("Starting download", logger.Fields{"package": pkg.Name, "version": pkg.Version, "url": pkg.DownloadURL})

	data, err := o.DL.Fetch(ctx, pkg.DownloadURL)
	if err != nil {
		if isDependency {
			report = report.with(LineError, "Unable to download dependency!")
		} else {
			report = report.with(LineError, "Unable to download mod!")
		}
		return report, &InstallError{Kind: KindFetchFailed, Package: pkg.Name, Err: err}
	}
	logger.Debug("Downloaded package", logger.Fields{"package": pkg.Name, "bytes": len(data)})

	if pkg.HasExtension(o.archiveExtensions()) {
		if !isDependency {
			report = report.with(LineInfo, "Extracting ZIP File to plugins..")
		}
		emit(o.Hooks, Event{Phase: "extracting", ID: pkg.Name, Msg: pkg.FileName()})
		if err := o.FS.ExtractArchive(ctx, pkg.FileName(), data, o.TargetDir); err != nil {
			report = report.with(LineError, "Unable to extract %s: %v", pkg.FileName(), err)
			return report, &InstallError{Kind: KindArchive, Package: pkg.Name, Err: err}
		}
	} else {
		path, err := o.targetPath(pkg.FileName())
		if err != nil {
			report = report.with(LineError, "Unable to write %s: %v", pkg.FileName(), err)
			return report, &InstallError{Kind: KindWrite, Package: pkg.Name, Err: err}
		}
		emit(o.Hooks, Event{Phase: "writing", ID: pkg.Name, Msg: path})
		if err := o.replaceFile(ctx, path, data); err != nil {
			report = report.with(LineError, "Unable to write %s: %v", pkg.FileName(), err)
			return report, &InstallError{Kind: KindWrite, Package: pkg.Name, Err: err}
		}
	}

	for _, name := range pkg.Dependencies {
		dep, ok := c.catalog.Lookup(name)
		if !ok {
			report = report.with(LineError, "Could not find dependency: %s", name)
			return report, &InstallError{Kind: KindDependencyNotFound, Package: pkg.Name, Dependency: name}
		}
		if !c.visit(dep.Name) {
			logger.Debug("Dependency already handled in this chain", logger.Fields{"package": pkg.Name, "dependency": name})
			continue
		}
		emit(o.Hooks, Event{Phase: "dependency", ID: dep.Name, Msg: pkg.Name})
		report, err = o.install(ctx, c, dep, true, report)
		if err != nil {
			return report, err
		}
	}

	if isDependency {
		report = report.with(LineSuccess, "Downloaded Dependency: %s v%s", pkg.Name, pkg.Version)
	} else {
		report = report.with(LineSuccess, "Successfully Downloaded %s!", pkg.Name)
	}
	return report.installed(pkg.Name), nil
}

// targetPath places a single-file download directly inside TargetDir. Names
// that would resolve to TargetDir itself, its parent or a subdirectory are
// rejected before any filesystem call.
func (o *Orchestrator) targetPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: file name %q", errors.ErrInvalidPath, name)
	}
	root := filepath.Clean(o.TargetDir)
	path := filepath.Join(root, name)
	if filepath.Dir(path) != root {
		return "", fmt.Errorf("%w: %s escapes %s", errors.ErrInvalidPath, path, root)
	}
	return path, nil
}

// replaceFile deletes any previous copy of path before writing data, so a
// repeated install leaves exactly one file with the latest content.
func (o *Orchestrator) replaceFile(ctx context.Context, path string, data []byte) error {
	exists, err := o.FS.FileExists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		if err := o.FS.DeleteFile(ctx, path); err != nil {
			return err
		}
	}
	return o.FS.WriteFile(ctx, path, data)
}

// Plan walks the install chain of target without touching the network or the
// disk. Steps are listed in the order Install would visit them.
func (o *Orchestrator) Plan(target model.Package, cat *model.Catalog) (model.ResolvedPackages, error) {
	c := newChain(cat)
	c.visit(target.Name)
	var plan model.ResolvedPackages
	if err := o.plan(c, target, false, 0, &plan); err != nil {
		return plan, err
	}
	for _, step := range plan.Packages {
		emit(o.Hooks, Event{Phase: "planning", ID: step.Name, Msg: string(step.Action)})
	}
	return plan, nil
}

func (o *Orchestrator) plan(c *chain, pkg model.Package, isDependency bool, depth int, plan *model.ResolvedPackages) error {
	plan.Packages = append(plan.Packages, o.resolved(pkg, isDependency, depth, model.ResolvedActionInstall, ""))
	for _, name := range pkg.Dependencies {
		dep, ok := c.catalog.Lookup(name)
		if !ok {
			return &InstallError{Kind: KindDependencyNotFound, Package: pkg.Name, Dependency: name}
		}
		if !c.visit(dep.Name) {
			plan.Packages = append(plan.Packages, o.resolved(dep, true, depth+1, model.ResolvedActionSkip, "already in chain"))
			continue
		}
		if err := o.plan(c, dep, true, depth+1, plan); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) resolved(pkg model.Package, isDependency bool, depth int, action model.ResolvedAction, reason string) model.ResolvedPackage {
	strategy := model.StrategyWrite
	if pkg.HasExtension(o.archiveExtensions()) {
		strategy = model.StrategyExtract
	}
	return model.ResolvedPackage{
		Name:         pkg.Name,
		Version:      pkg.Version,
		FileName:     pkg.FileName(),
		Strategy:     strategy,
		Action:       action,
		IsDependency: isDependency,
		Depth:        depth,
		Reason:       reason,
	}
}

func (o *Orchestrator) archiveExtensions() []string {
	if len(o.ArchiveExtensions) == 0 {
		return DefaultArchiveExtensions
	}
	return o.ArchiveExtensions
}

// New constructs an Orchestrator. Helper for wiring.
// Hooks can be zero if no event handling is needed.
func New(dl Transport, fs Filesystem, targetDir string, archiveExtensions []string, hooks Hooks) *Orchestrator {
	return &Orchestrator{
		DL:                dl,
		FS:                fs,
		TargetDir:         targetDir,
		ArchiveExtensions: archiveExtensions,
		Hooks:             hooks,
	}
}
