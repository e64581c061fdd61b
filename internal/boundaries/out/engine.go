// Package out defines output ports (interfaces) devobox's use cases
// depend on; concrete adapters live under internal/adapters/out.
package out

import (
	"context"

	"github.com/devobox/devobox/internal/domain"
)

// Engine is the capability wrapper around the OCI container engine: the
// sole surface through which the orchestrator mutates or observes
// container state. A rootless Docker-compatible engine (Docker itself,
// or rootless Podman exposing the same REST API over a unix socket)
// satisfies it.
type Engine interface {
	// Create materializes a stopped container from spec. Idempotent
	// against AlreadyExists only in the sense that the caller is told;
	// it does not silently succeed on a name collision.
	Create(ctx context.Context, spec *domain.ContainerSpec) error

	// Start, Stop, and Remove are idempotent against their target
	// state: starting a running container and stopping a stopped one
	// are no-ops.
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error

	State(ctx context.Context, name string) (domain.ContainerState, error)

	// Health reports NotApplicable when the container has no
	// healthcheck configured.
	Health(ctx context.Context, name string) (domain.ContainerHealth, error)

	// ExecShell opens an interactive terminal inside name at workdir
	// (empty means the container's default home), propagating
	// stdin/stdout/stderr and terminal size, and returns the exit
	// code. cmd is the program to run; nil means the container's
	// login shell. The Session adapter builds on this by passing a
	// multiplexer attach/create command instead of a bare shell.
	ExecShell(ctx context.Context, name, workdir string, cmd []string) (int, error)

	Build(ctx context.Context, tag, containerfile, contextDir string) error

	PruneContainers(ctx context.Context) error
	PruneImages(ctx context.Context) error
	PruneVolumes(ctx context.Context) error
	PruneBuildCache(ctx context.Context) error
	NukeSystem(ctx context.Context) error
}

// ErrorCategory enumerates the engine-level failure categories every
// Engine method is expected to report through *EngineError.
type ErrorCategory string

const (
	NotFound         ErrorCategory = "not_found"
	AlreadyExists    ErrorCategory = "already_exists"
	Timeout          ErrorCategory = "timeout"
	EngineUnavailable ErrorCategory = "engine_unavailable"
	Other            ErrorCategory = "other"
)

// EngineError is the single error shape every Engine operation fails
// with. The adapter never interprets user intent; it only reports.
type EngineError struct {
	Category ErrorCategory
	Stderr   string
	Cause    error
}

func (e *EngineError) Error() string {
	if e.Stderr != "" {
		return string(e.Category) + ": " + e.Stderr
	}
	if e.Cause != nil {
		return string(e.Category) + ": " + e.Cause.Error()
	}
	return string(e.Category)
}

func (e *EngineError) Unwrap() error { return e.Cause }
