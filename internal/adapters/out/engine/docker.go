// Package engine implements the Engine port against a Docker-compatible
// API socket. Rootless Podman exposes the same REST surface over a unix
// socket, so this adapter serves both engines.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	cerrdefs "github.com/containerd/errdefs"
	moby "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/go-connections/nat"
	mobyterm "github.com/moby/term"
	"golang.org/x/term"

	"github.com/devobox/devobox/internal/boundaries/out"
	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/duration"
	"github.com/devobox/devobox/internal/logging"
)

// Docker implements out.Engine using the Docker SDK client.
type Docker struct {
	cli *client.Client
}

// New connects to the engine socket named by the standard DOCKER_HOST
// (and other DOCKER_*) environment variables, negotiating the API
// version.
func New() (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, &out.EngineError{Category: out.EngineUnavailable, Cause: err}
	}
	return &Docker{cli: cli}, nil
}

// NewWithClient wraps an already-constructed client, for tests against
// a fake Docker daemon.
func NewWithClient(cli *client.Client) *Docker {
	return &Docker{cli: cli}
}

func wrap(err error, category out.ErrorCategory) error {
	if err == nil {
		return nil
	}
	if cerrdefs.IsNotFound(err) {
		return &out.EngineError{Category: out.NotFound, Cause: err}
	}
	if cerrdefs.IsAlreadyExists(err) {
		return &out.EngineError{Category: out.AlreadyExists, Cause: err}
	}
	return &out.EngineError{Category: category, Cause: err}
}

// Create materializes a stopped container from spec. Port mappings are
// only applied when spec.Network is not "host" — host-network
// containers publish all listening sockets directly and the engine
// rejects port bindings alongside it.
func (d *Docker) Create(ctx context.Context, spec *domain.ContainerSpec) error {
	log := logging.Get().With("adapter", "docker", "action", "Create", "container", spec.Name)

	exposedPorts := make(nat.PortSet)
	portBindings := make(nat.PortMap)
	if spec.Network != "host" {
		for _, p := range spec.Ports {
			containerPort, binding, err := parsePortMapping(p)
			if err != nil {
				return domain.WrapConfigError(err, "invalid port mapping %q", p)
			}
			exposedPorts[containerPort] = struct{}{}
			portBindings[containerPort] = append(portBindings[containerPort], binding)
		}
	}

	var binds []string
	for _, v := range spec.Volumes {
		binds = append(binds, v)
	}

	var healthcheck *container.HealthConfig
	if spec.HasHealthcheck() {
		interval, _ := duration.Parse(spec.HealthcheckInterval)
		timeout, _ := duration.Parse(spec.HealthcheckTimeout)
		retries := spec.HealthcheckRetries
		if retries <= 0 {
			retries = 3
		}
		healthcheck = &container.HealthConfig{
			Test:     []string{"CMD-SHELL", spec.HealthcheckCommand},
			Interval: interval,
			Timeout:  timeout,
			Retries:  retries,
		}
	}

	tty, openStdin := hasInteractiveFlag(spec.ExtraArgs)

	containerConfig := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: exposedPorts,
		WorkingDir:   spec.Workdir,
		Healthcheck:  healthcheck,
		Tty:          tty,
		OpenStdin:    openStdin,
	}

	hostConfig := &container.HostConfig{
		PortBindings: portBindings,
		Binds:        binds,
	}
	if spec.Network == "host" {
		hostConfig.NetworkMode = container.NetworkMode("host")
	}
	if spec.Userns != "" {
		hostConfig.UsernsMode = container.UsernsMode(spec.Userns)
	}
	if spec.SecurityOpt != "" {
		hostConfig.SecurityOpt = []string{spec.SecurityOpt}
	}

	var netConfig *network.NetworkingConfig
	_, err := d.cli.ContainerCreate(ctx, containerConfig, hostConfig, netConfig, nil, spec.Name)
	if err != nil {
		log.Debug("create failed", "err", err)
		return wrap(err, out.Other)
	}
	log.Info("container created")
	return nil
}

func hasInteractiveFlag(extraArgs []string) (tty, openStdin bool) {
	for _, a := range extraArgs {
		switch a {
		case "-it", "-i", "-t":
			return true, true
		}
	}
	return false, false
}

func parsePortMapping(spec string) (nat.Port, nat.PortBinding, error) {
	exposed, bindings, err := nat.ParsePortSpecs([]string{spec})
	if err != nil {
		return "", nat.PortBinding{}, err
	}
	for p := range exposed {
		b := bindings[p]
		if len(b) == 0 {
			return p, nat.PortBinding{}, nil
		}
		return p, b[0], nil
	}
	return "", nat.PortBinding{}, fmt.Errorf("unparseable port mapping %q", spec)
}

func (d *Docker) Start(ctx context.Context, name string) error {
	state, err := d.State(ctx, name)
	if err != nil {
		return err
	}
	if state == domain.ContainerRunning {
		return nil
	}
	if err := d.cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return wrap(err, out.Other)
	}
	return nil
}

func (d *Docker) Stop(ctx context.Context, name string) error {
	state, err := d.State(ctx, name)
	if err != nil {
		return err
	}
	if state != domain.ContainerRunning {
		return nil
	}
	timeout := 30
	if err := d.cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return wrap(err, out.Other)
	}
	return nil
}

func (d *Docker) Remove(ctx context.Context, name string) error {
	err := d.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return nil
		}
		return wrap(err, out.Other)
	}
	return nil
}

func (d *Docker) State(ctx context.Context, name string) (domain.ContainerState, error) {
	resp, err := d.cli.ContainerInspect(ctx, name)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return domain.ContainerNotCreated, nil
		}
		return "", wrap(err, out.Other)
	}
	if resp.State != nil && resp.State.Running {
		return domain.ContainerRunning, nil
	}
	return domain.ContainerStopped, nil
}

func (d *Docker) Health(ctx context.Context, name string) (domain.ContainerHealth, error) {
	resp, err := d.cli.ContainerInspect(ctx, name)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return domain.HealthNotApplicable, &out.EngineError{Category: out.NotFound, Cause: err}
		}
		return "", wrap(err, out.Other)
	}
	if resp.State == nil || resp.State.Health == nil {
		return domain.HealthNotApplicable, nil
	}
	switch resp.State.Health.Status {
	case "healthy":
		return domain.HealthHealthy, nil
	case "unhealthy":
		return domain.HealthUnhealthy, nil
	case "starting":
		return domain.HealthStarting, nil
	default:
		return domain.HealthUnknown, nil
	}
}

// ExecShell attaches an interactive terminal running cmd (or the
// container's login shell when cmd is nil) inside name at workdir,
// propagating stdio and terminal size, returning the exit code.
func (d *Docker) ExecShell(ctx context.Context, name, workdir string, cmd []string) (int, error) {
	if len(cmd) == 0 {
		cmd = []string{"/bin/sh", "-l"}
	}

	execCfg := container.ExecOptions{
		Cmd:          cmd,
		WorkingDir:   workdir,
		Tty:          true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
	}
	created, err := d.cli.ContainerExecCreate(ctx, name, execCfg)
	if err != nil {
		return -1, wrap(err, out.Other)
	}

	hijacked, err := d.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{Tty: true})
	if err != nil {
		return -1, wrap(err, out.Other)
	}
	defer hijacked.Close()

	resizeExecTTY(ctx, d.cli, created.ID)

	done := make(chan error, 1)
	go func() {
		_, copyErr := io.Copy(os.Stdout, hijacked.Reader)
		done <- copyErr
	}()
	go func() { _, _ = io.Copy(hijacked.Conn, os.Stdin) }()
	<-done

	inspect, err := d.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return -1, wrap(err, out.Other)
	}
	return inspect.ExitCode, nil
}

// resizeExecTTY best-effort propagates the caller's terminal size to
// the exec session, falling back silently when stdout is not a TTY
// (e.g. under test or CI).
func resizeExecTTY(ctx context.Context, cli *client.Client, execID string) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	ws, err := mobyterm.GetWinsize(uintptr(fd))
	if err != nil {
		return
	}
	_ = cli.ContainerExecResize(ctx, execID, container.ResizeOptions{
		Height: uint(ws.Height),
		Width:  uint(ws.Width),
	})
}

// archiveContext tars contextDir into the streaming build context the
// daemon expects, excluding nothing beyond the engine's own defaults.
func archiveContext(contextDir string) (io.ReadCloser, error) {
	return archive.TarWithOptions(contextDir, &archive.TarOptions{})
}

func (d *Docker) Build(ctx context.Context, tag, containerfile, contextDir string) error {
	buildCtx, err := archiveContext(contextDir)
	if err != nil {
		return domain.WrapConfigError(err, "building build context for %s", contextDir)
	}
	defer buildCtx.Close()

	opts := moby.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: containerfile,
		Remove:     true,
	}
	resp, err := d.cli.ImageBuild(ctx, buildCtx, opts)
	if err != nil {
		return wrap(err, out.Other)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (d *Docker) PruneContainers(ctx context.Context) error {
	_, err := d.cli.ContainersPrune(ctx, filters.NewArgs())
	return wrap(err, out.Other)
}

func (d *Docker) PruneImages(ctx context.Context) error {
	_, err := d.cli.ImagesPrune(ctx, filters.NewArgs())
	return wrap(err, out.Other)
}

func (d *Docker) PruneVolumes(ctx context.Context) error {
	_, err := d.cli.VolumesPrune(ctx, filters.NewArgs())
	return wrap(err, out.Other)
}

func (d *Docker) PruneBuildCache(ctx context.Context) error {
	_, err := d.cli.BuildCachePrune(ctx, moby.BuildCachePruneOptions{All: true})
	return wrap(err, out.Other)
}

// NukeSystem is the --nuke path: unlike the individual Prune* methods,
// it also removes images still referenced by a tag (the "all" image
// prune), since the caller has already confirmed a full teardown.
func (d *Docker) NukeSystem(ctx context.Context) error {
	if err := d.PruneContainers(ctx); err != nil {
		return err
	}
	allImages := filters.NewArgs(filters.Arg("dangling", "false"))
	if _, err := d.cli.ImagesPrune(ctx, allImages); err != nil {
		return wrap(err, out.Other)
	}
	if err := d.PruneVolumes(ctx); err != nil {
		return err
	}
	return d.PruneBuildCache(ctx)
}
