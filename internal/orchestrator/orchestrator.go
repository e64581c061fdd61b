// Package orchestrator composes the container service and session
// adapter into devobox's workflows: build, up, down, shell, dev,
// project_up, and cleanup, plus the health-gated start-and-wait
// protocol that every start path routes through. Grounded on
// original_source/src/services/orchestrator.rs, generalized from its
// two hardcoded containers (devobox + one database) to an arbitrary
// closure of services.
package orchestrator

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/devobox/devobox/internal/boundaries/out"
	"github.com/devobox/devobox/internal/config"
	"github.com/devobox/devobox/internal/containerservice"
	"github.com/devobox/devobox/internal/discovery"
	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/duration"
	"github.com/devobox/devobox/internal/logging"
)

// ServiceFilter selects a subset of the closure by kind, the mechanism
// behind --dbs-only / --services-only and the db/service command
// groups.
type ServiceFilter int

const (
	FilterAll ServiceFilter = iota
	FilterDatabase
	FilterGeneric
)

func filterServices(services []domain.Service, filter ServiceFilter) []domain.Service {
	if filter == FilterAll {
		return services
	}
	var kind domain.ServiceKind
	if filter == FilterDatabase {
		kind = domain.KindDatabase
	} else {
		kind = domain.KindGeneric
	}
	var out []domain.Service
	for _, svc := range services {
		if svc.Kind == kind {
			out = append(out, svc)
		}
	}
	return out
}

// CleanupOptions selects which engine prune operations a cleanup
// invocation performs.
type CleanupOptions struct {
	Containers bool
	Images     bool
	Volumes    bool
	BuildCache bool
	Nuke       bool
}

// DefaultCleanup is the conservative cleanup applied when the CLI's
// cleanup command is invoked with no flags: stopped containers,
// dangling images, and build cache, leaving named volumes untouched.
func DefaultCleanup() CleanupOptions {
	return CleanupOptions{Containers: true, Images: true, BuildCache: true}
}

// InitFunc performs the install+build sequence shell triggers when the
// hub has never been created. It is supplied by the CLI layer, which
// owns the install workflow (copying default manifests into the
// config directory); the orchestrator only knows it needs to run one.
type InitFunc func(ctx context.Context) error

// Orchestrator composes the Engine port, the container service, and
// the session adapter into devobox's command-level workflows.
type Orchestrator struct {
	engine     out.Engine
	containers *containerservice.Service
	session    out.Session
}

// New returns an Orchestrator backed by engine and session.
func New(engine out.Engine, session out.Session) *Orchestrator {
	return &Orchestrator{
		engine:     engine,
		containers: containerservice.New(engine),
		session:    session,
	}
}

// Build performs skip_cleanup-gated pruning, an engine image build,
// then recreates every service in the closure followed by the hub.
func (o *Orchestrator) Build(ctx context.Context, skipCleanup bool, tag, containerfile, contextDir string, services []domain.Service, hubSpec *domain.ContainerSpec) error {
	if !skipCleanup {
		if err := o.engine.PruneContainers(ctx); err != nil {
			logging.Get().Warn("ignoring prune failure before build", "kind", "containers", "err", err)
		}
		if err := o.engine.PruneImages(ctx); err != nil {
			logging.Get().Warn("ignoring prune failure before build", "kind", "images", "err", err)
		}
	}

	if err := o.engine.Build(ctx, tag, containerfile, contextDir); err != nil {
		return domain.NewEngineError(err, "building image %s", tag)
	}

	for i := range services {
		if err := o.containers.Recreate(ctx, services[i].ToSpec()); err != nil {
			return domain.NewEngineError(err, "recreating %s", services[i].Name)
		}
	}

	return o.containers.Recreate(ctx, hubSpec)
}

// Up resolves the filtered closure, ensures every service and the hub
// are created, runs the start-and-wait protocol over the filtered
// services, then ensures the hub is running.
func (o *Orchestrator) Up(ctx context.Context, services []domain.Service, filter ServiceFilter, hubSpec *domain.ContainerSpec) error {
	filtered := filterServices(services, filter)

	for i := range filtered {
		if err := o.containers.EnsureCreated(ctx, filtered[i].ToSpec()); err != nil {
			return err
		}
	}
	if err := o.containers.EnsureCreated(ctx, hubSpec); err != nil {
		return err
	}

	if err := o.StartAndWait(ctx, filtered); err != nil {
		return err
	}

	return o.containers.EnsureRunning(ctx, hubSpec.Name)
}

// StartAndWait issues start for every service in batch order, then
// waits for each to report healthy in the same order. It is exported
// so ProjectUp can reuse it over a project's own closure.
func (o *Orchestrator) StartAndWait(ctx context.Context, services []domain.Service) error {
	for i := range services {
		if err := o.engine.Start(ctx, services[i].Name); err != nil {
			return domain.NewEngineError(err, "starting %s", services[i].Name)
		}
	}

	for i := range services {
		if err := o.waitHealthy(ctx, &services[i]); err != nil {
			return err
		}
	}

	return nil
}

// waitHealthy polls health(name) until Healthy or NotApplicable, or
// until the retry budget is exhausted on Unhealthy. Starting and
// Unknown keep polling without touching the budget. A service with no
// healthcheck is considered ready the instant start returned success.
func (o *Orchestrator) waitHealthy(ctx context.Context, svc *domain.Service) error {
	if svc.Healthcheck == nil {
		return nil
	}

	retries := svc.Healthcheck.Retries
	if retries <= 0 {
		retries = 3
	}
	interval := time.Second
	if svc.Healthcheck.Interval != "" {
		if d, err := duration.Parse(svc.Healthcheck.Interval); err == nil {
			interval = d
		}
	}

	for {
		select {
		case <-ctx.Done():
			return domain.NewUserAbortError()
		default:
		}

		health, err := o.engine.Health(ctx, svc.Name)
		if err != nil {
			return domain.NewEngineError(err, "checking health of %s", svc.Name)
		}

		switch health {
		case domain.HealthHealthy, domain.HealthNotApplicable:
			return nil
		case domain.HealthUnhealthy:
			if retries == 0 {
				return domain.NewStartupFailedError(svc.Name, svc.Healthcheck.Retries)
			}
			retries--
		}
		// Starting and Unknown fall through here too: keep polling
		// without decrementing the budget.

		time.Sleep(interval)
	}
}

// StartServices ensures every service in the given subset is created
// and start-and-waits it, without touching the hub. It backs the
// `db`/`service` command groups' start/restart actions, which operate
// on a kind-filtered (and optionally name-filtered) subset rather than
// the full closure `Up` manages.
func (o *Orchestrator) StartServices(ctx context.Context, services []domain.Service) error {
	for i := range services {
		if err := o.containers.EnsureCreated(ctx, services[i].ToSpec()); err != nil {
			return err
		}
	}
	return o.StartAndWait(ctx, services)
}

// StopServices stops the given subset, logging but not aborting on
// individual failures, mirroring Down's semantics over a narrower set.
func (o *Orchestrator) StopServices(ctx context.Context, services []domain.Service) {
	names := make([]string, len(services))
	for i, svc := range services {
		names[i] = svc.Name
	}
	o.containers.StopAll(ctx, names)
}

// Down stops every known container (hub and closure), logging but not
// aborting on individual failures.
func (o *Orchestrator) Down(ctx context.Context, names []string) {
	o.containers.StopAll(ctx, names)
}

// Cleanup runs the engine prune operations selected by opts. Nuke
// supersedes the other four flags. Volumes are pruned only when Volumes
// or Nuke is set.
func (o *Orchestrator) Cleanup(ctx context.Context, opts CleanupOptions) error {
	if opts.Nuke {
		return o.engine.NukeSystem(ctx)
	}

	if opts.Containers {
		if err := o.engine.PruneContainers(ctx); err != nil {
			logging.Get().Warn("cleanup step failed", "kind", "containers", "err", err)
		}
	}
	if opts.Images {
		if err := o.engine.PruneImages(ctx); err != nil {
			logging.Get().Warn("cleanup step failed", "kind", "images", "err", err)
		}
	}
	if opts.Volumes {
		if err := o.engine.PruneVolumes(ctx); err != nil {
			logging.Get().Warn("cleanup step failed", "kind", "volumes", "err", err)
		}
	}
	if opts.BuildCache {
		if err := o.engine.PruneBuildCache(ctx); err != nil {
			logging.Get().Warn("cleanup step failed", "kind", "build_cache", "err", err)
		}
	}
	return nil
}

// RebaseWorkdir computes the in-container workdir shell() passes to
// exec_shell: the host cwd rebased onto /home/<user>/code when it
// lies inside codeRoot, or hubWorkdir when it doesn't.
func RebaseWorkdir(codeRoot, cwd, hubWorkdir string) string {
	rel, err := filepath.Rel(codeRoot, cwd)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return hubWorkdir
	}
	containerCode := "/home/" + containerservice.ContainerUser + "/code"
	if rel == "." {
		return containerCode
	}
	return containerCode + "/" + filepath.ToSlash(rel)
}

// Shell implements shell(with_dbs, auto_stop): auto-init a never-built
// hub, start a stopped one, optionally bring up the database closure
// first, attach at the rebased workdir, and optionally tear everything
// down again once the shell exits.
func (o *Orchestrator) Shell(ctx context.Context, hubSpec *domain.ContainerSpec, allServices []domain.Service, codeRoot, cwd string, withDbs, autoStop bool, allNames []string, initFn InitFunc) error {
	state, err := o.engine.State(ctx, hubSpec.Name)
	if err != nil {
		return err
	}

	switch state {
	case domain.ContainerNotCreated:
		if initFn != nil {
			if err := initFn(ctx); err != nil {
				return err
			}
		}
	case domain.ContainerStopped:
		if err := o.containers.EnsureRunning(ctx, hubSpec.Name); err != nil {
			return err
		}
	}

	if withDbs {
		if err := o.Up(ctx, allServices, FilterDatabase, hubSpec); err != nil {
			return err
		}
	}

	workdir := RebaseWorkdir(codeRoot, cwd, hubSpec.Workdir)
	if _, err := o.engine.ExecShell(ctx, hubSpec.Name, workdir, nil); err != nil {
		return err
	}

	if autoStop {
		o.Down(ctx, allNames)
	}
	return nil
}

// Dev is shell(with_dbs=true, auto_stop).
func (o *Orchestrator) Dev(ctx context.Context, hubSpec *domain.ContainerSpec, allServices []domain.Service, codeRoot, cwd string, autoStop bool, allNames []string, initFn InitFunc) error {
	return o.Shell(ctx, hubSpec, allServices, codeRoot, cwd, true, autoStop, allNames, initFn)
}

// ProjectUp locates name under the discovered code root, loads its own
// manifest and dependency closure, ensures and start-and-waits that
// closure, then opens or attaches its multiplexer session with one tab
// per dependency project alongside the project's own tab.
func (o *Orchestrator) ProjectUp(ctx context.Context, name, configDir, hubName string, disc *discovery.ProjectDiscovery) error {
	project, err := disc.FindProject(name)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.NewConfigError("project %q not found under %s", name, disc.BaseDir())
	}

	_, services, err := config.Load(configDir, project.Path)
	if err != nil {
		return err
	}

	for i := range services {
		if err := o.containers.EnsureCreated(ctx, services[i].ToSpec()); err != nil {
			return err
		}
	}
	if err := o.StartAndWait(ctx, services); err != nil {
		return err
	}

	main := out.ProjectPane{
		Name:           project.Name,
		Path:           project.Path,
		StartupCommand: project.StartupCommand(),
	}
	var deps []out.ProjectPane
	for _, rel := range project.Config.Dependencies.IncludeProjects {
		depPath := rel
		if !filepath.IsAbs(depPath) {
			depPath = filepath.Join(project.Path, rel)
		}
		deps = append(deps, out.ProjectPane{Name: filepath.Base(depPath), Path: depPath})
	}

	return o.session.OpenProject(project.SessionName(hubName), main, deps)
}
