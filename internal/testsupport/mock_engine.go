// Package testsupport provides a mock Engine for orchestrator and
// containerservice tests, recording every invocation so assertions can
// check call order without a real container engine. Grounded on
// original_source/src/test_support.rs's MockRuntime.
package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/devobox/devobox/internal/boundaries/out"
	"github.com/devobox/devobox/internal/domain"
)

// MockEngine implements out.Engine in memory.
type MockEngine struct {
	mu sync.Mutex

	containers map[string]domain.ContainerState
	specs      map[string]*domain.ContainerSpec
	commands   []string
	failOn     string

	// healthTraces lets a test script the sequence of Health()
	// responses a service returns: each call pops the next entry,
	// and the last entry repeats once exhausted.
	healthTraces map[string][]domain.ContainerHealth
	healthCalls  map[string]int
}

// New returns an empty MockEngine.
func New() *MockEngine {
	return &MockEngine{
		containers:   make(map[string]domain.ContainerState),
		specs:        make(map[string]*domain.ContainerSpec),
		healthTraces: make(map[string][]domain.ContainerHealth),
		healthCalls:  make(map[string]int),
	}
}

// AddContainer seeds name as pre-existing in state, as if created by
// an earlier invocation.
func (m *MockEngine) AddContainer(name string, state domain.ContainerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers[name] = state
}

// SetHealthTrace scripts the sequence of Health() responses for name.
func (m *MockEngine) SetHealthTrace(name string, trace []domain.ContainerHealth) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthTraces[name] = trace
}

// SetFailOn makes every call to the named operation return an error.
// operation is the name each method checks: for most it matches the
// command prefix recorded by Commands, e.g. "start", "create",
// "health"; the prune operations use "prune_containers",
// "prune_images", ... while recording "prune:containers", ....
func (m *MockEngine) SetFailOn(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = operation
}

// Commands returns every invocation recorded so far, in call order.
func (m *MockEngine) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmds := make([]string, len(m.commands))
	copy(cmds, m.commands)
	return cmds
}

func (m *MockEngine) record(format string, args ...any) {
	m.commands = append(m.commands, fmt.Sprintf(format, args...))
}

func (m *MockEngine) checkFail(operation string) error {
	if m.failOn == operation {
		return &out.EngineError{Category: out.Other, Stderr: "mock failure on: " + operation}
	}
	return nil
}

func (m *MockEngine) Create(ctx context.Context, spec *domain.ContainerSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create:%s", spec.Name)
	if err := m.checkFail("create"); err != nil {
		return err
	}
	m.containers[spec.Name] = domain.ContainerStopped
	m.specs[spec.Name] = spec
	return nil
}

func (m *MockEngine) Start(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("start:%s", name)
	if err := m.checkFail("start"); err != nil {
		return err
	}
	m.containers[name] = domain.ContainerRunning
	return nil
}

func (m *MockEngine) Stop(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("stop:%s", name)
	if err := m.checkFail("stop"); err != nil {
		return err
	}
	m.containers[name] = domain.ContainerStopped
	return nil
}

func (m *MockEngine) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("remove:%s", name)
	if err := m.checkFail("remove"); err != nil {
		return err
	}
	delete(m.containers, name)
	delete(m.specs, name)
	return nil
}

func (m *MockEngine) State(ctx context.Context, name string) (domain.ContainerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("state:%s", name)
	if err := m.checkFail("state"); err != nil {
		return "", err
	}
	state, ok := m.containers[name]
	if !ok {
		return domain.ContainerNotCreated, nil
	}
	return state, nil
}

func (m *MockEngine) Health(ctx context.Context, name string) (domain.ContainerHealth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("health:%s", name)
	if err := m.checkFail("health"); err != nil {
		return "", err
	}
	trace := m.healthTraces[name]
	if len(trace) == 0 {
		return domain.HealthNotApplicable, nil
	}
	idx := m.healthCalls[name]
	if idx >= len(trace) {
		idx = len(trace) - 1
	}
	m.healthCalls[name] = idx + 1
	return trace[idx], nil
}

func (m *MockEngine) ExecShell(ctx context.Context, name, workdir string, cmd []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("exec_shell:%s", name)
	if err := m.checkFail("exec_shell"); err != nil {
		return -1, err
	}
	return 0, nil
}

func (m *MockEngine) Build(ctx context.Context, tag, containerfile, contextDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("build_image:%s", tag)
	return m.checkFail("build_image")
}

func (m *MockEngine) PruneContainers(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("prune:containers")
	return m.checkFail("prune_containers")
}

func (m *MockEngine) PruneImages(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("prune:images")
	return m.checkFail("prune_images")
}

func (m *MockEngine) PruneVolumes(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("prune:volumes")
	return m.checkFail("prune_volumes")
}

func (m *MockEngine) PruneBuildCache(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("prune:build_cache")
	return m.checkFail("prune_build_cache")
}

func (m *MockEngine) NukeSystem(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("nuke_system")
	return m.checkFail("nuke_system")
}

var _ out.Engine = (*MockEngine)(nil)
