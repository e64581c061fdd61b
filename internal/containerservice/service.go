// Package containerservice provides state-aware lifecycle primitives
// over the Engine port: ensure_created, ensure_running, recreate, and
// stop_all, plus the hub ContainerSpec builder. Grounded on
// original_source/src/services/container_service.rs and
// src/builder.rs's code-mount/hub-recreate workflow.
package containerservice

import (
	"context"
	"os"
	"path/filepath"

	"github.com/devobox/devobox/internal/boundaries/out"
	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/logging"
)

// Service wraps an Engine with the orchestrator's state-aware
// primitives.
type Service struct {
	engine out.Engine
}

// New returns a Service backed by engine.
func New(engine out.Engine) *Service {
	return &Service{engine: engine}
}

// EnsureCreated creates spec if it does not exist yet. An
// already-created container with a divergent spec is not reconciled
// here; callers needing that use Recreate.
func (s *Service) EnsureCreated(ctx context.Context, spec *domain.ContainerSpec) error {
	state, err := s.engine.State(ctx, spec.Name)
	if err != nil {
		return err
	}
	if state != domain.ContainerNotCreated {
		return nil
	}
	return s.engine.Create(ctx, spec)
}

// EnsureRunning starts name if it is Stopped, no-ops if Running, and
// fails with a remedy hint if it was never created.
func (s *Service) EnsureRunning(ctx context.Context, name string) error {
	state, err := s.engine.State(ctx, name)
	if err != nil {
		return err
	}
	switch state {
	case domain.ContainerRunning:
		return nil
	case domain.ContainerStopped:
		logging.Get().Info("starting container", "name", name)
		return s.engine.Start(ctx, name)
	default:
		return domain.NewMissingContainerError(name)
	}
}

// Recreate best-effort removes then creates spec: the mechanism behind
// build/rebuild.
func (s *Service) Recreate(ctx context.Context, spec *domain.ContainerSpec) error {
	if err := s.engine.Remove(ctx, spec.Name); err != nil {
		logging.Get().Warn("ignoring remove failure before recreate", "name", spec.Name, "err", err)
	}
	return s.engine.Create(ctx, spec)
}

// StopAll invokes Stop on every name, logging and skipping individual
// failures rather than aborting the batch (graceful degradation, per
// the error-handling design's down/cleanup exception).
func (s *Service) StopAll(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.engine.Stop(ctx, name); err != nil {
			logging.Get().Error("failed to stop container", "name", name, "err", err)
		}
	}
}

// ContainerUser is the fixed in-container username every hub image
// runs as, independent of the host's own username.
const ContainerUser = "dev"

// HubSpec builds the fixed-choice ContainerSpec for the hub: host
// network, rootless-friendly userns/security_opt, the code root bound
// read-write at /home/dev/code, the host user's SSH directory bound
// read-only, and SSH_AUTH_SOCK forwarded if the host exposes it.
func HubSpec(cfg domain.AppConfig, codeRoot string) *domain.ContainerSpec {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/home/dev"
	}

	volumes := []string{
		codeRoot + ":/home/" + ContainerUser + "/code",
		filepath.Join(home, ".ssh") + ":/home/" + ContainerUser + "/.ssh:ro",
	}
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		volumes = append(volumes, sock+":"+sock)
	}

	return &domain.ContainerSpec{
		Name:        cfg.Container.Name,
		Image:       cfg.Build.ImageName,
		Volumes:     volumes,
		Network:     "host",
		Userns:      "keep-id",
		SecurityOpt: "label=disable",
		Workdir:     cfg.Container.Workdir,
		ExtraArgs:   []string{"-it"},
	}
}
