package cmd

import (
	"os"

	"github.com/devobox/devobox/internal/adapters/out/engine"
	"github.com/devobox/devobox/internal/adapters/out/session"
	"github.com/devobox/devobox/internal/boundaries/out"
	"github.com/devobox/devobox/internal/config"
	"github.com/devobox/devobox/internal/containerservice"
	"github.com/devobox/devobox/internal/discovery"
	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/orchestrator"
)

// appContext bundles everything a command needs once the manifests are
// loaded and the engine connection is open: the resolved config and
// service closure, the hub's spec, and the orchestrator wired to a
// real Docker-compatible engine and zellij session adapter.
type appContext struct {
	cfg      domain.AppConfig
	services []domain.Service
	hubSpec  *domain.ContainerSpec
	codeRoot string
	disc     *discovery.ProjectDiscovery

	eng  out.Engine
	orch *orchestrator.Orchestrator
}

// containerNames returns every container name the closure plus the
// hub are known by, the list down() and auto_stop stop in turn.
func (a *appContext) containerNames() []string {
	names := make([]string, 0, len(a.services)+1)
	for _, svc := range a.services {
		names = append(names, svc.Name)
	}
	names = append(names, a.hubSpec.Name)
	return names
}

// resolvedConfigDir returns the --config-dir override if set, else the
// platform default.
func resolvedConfigDir() string {
	if configDirFlag != "" {
		return configDirFlag
	}
	return config.DefaultConfigDir()
}

// loadApp resolves manifests under the working directory and connects
// to the container engine, the bootstrap every command (except
// install) performs before doing its own work.
func loadApp() (*appContext, error) {
	configDir := resolvedConfigDir()
	workDir, err := os.Getwd()
	if err != nil {
		return nil, domain.WrapConfigError(err, "resolving working directory")
	}

	cfg, services, err := config.Load(configDir, workDir)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New()
	if err != nil {
		return nil, err
	}

	codeRoot := config.CodeRoot()
	hubSpec := containerservice.HubSpec(cfg, codeRoot)

	disc, err := discovery.New(codeRoot)
	if err != nil {
		return nil, err
	}

	sess := session.New(eng, hubSpec.Name)
	orch := orchestrator.New(eng, sess)

	return &appContext{
		cfg:      cfg,
		services: services,
		hubSpec:  hubSpec,
		codeRoot: codeRoot,
		disc:     disc,
		eng:      eng,
		orch:     orch,
	}, nil
}
