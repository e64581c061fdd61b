package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devobox/devobox/internal/boundaries/out"
	"github.com/devobox/devobox/internal/discovery"
	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/testsupport"
)

// stubSession is a minimal out.Session recording OpenProject calls,
// enough to assert project_up wired the right panes without needing a
// real multiplexer.
type stubSession struct {
	openedSession string
	openedMain    out.ProjectPane
	openedDeps    []out.ProjectPane
}

func (s *stubSession) OpenOrAttach(sessionName, workdir string) error { return nil }

func (s *stubSession) OpenProject(sessionName string, main out.ProjectPane, dependencies []out.ProjectPane) error {
	s.openedSession = sessionName
	s.openedMain = main
	s.openedDeps = dependencies
	return nil
}

func (s *stubSession) List() ([]string, error)    { return nil, nil }
func (s *stubSession) Kill(sessionName string) error { return nil }

func dbService(name string) domain.Service {
	retries := 3
	svc := domain.Service{
		Name:                name,
		Image:               "postgres:16",
		Kind:                domain.KindDatabase,
		HealthcheckCommand:  "pg_isready",
		HealthcheckInterval: "1s",
		HealthcheckRetries:  &retries,
	}
	svc.Normalize()
	return svc
}

func noHealthcheckService(name string, kind domain.ServiceKind) domain.Service {
	svc := domain.Service{Name: name, Image: "redis:7", Kind: kind}
	svc.Normalize()
	return svc
}

func hubSpec() *domain.ContainerSpec {
	return &domain.ContainerSpec{Name: "devobox", Image: "devobox-img", Workdir: "/home/dev"}
}

// S1: cold init. pg reports Starting twice then Healthy; redis has no
// healthcheck. Expect the create-then-start-then-health-then-hub order
// and a successful exit.
func TestUp_ColdInit_CreatesStartsWaitsThenHub(t *testing.T) {
	engine := testsupport.New()
	engine.SetHealthTrace("pg", []domain.ContainerHealth{domain.HealthStarting, domain.HealthStarting, domain.HealthHealthy})
	o := New(engine, &stubSession{})

	services := []domain.Service{dbService("pg"), noHealthcheckService("redis", domain.KindDatabase)}

	err := o.Up(context.Background(), services, FilterAll, hubSpec())
	require.NoError(t, err)

	cmds := engine.Commands()
	require.Contains(t, cmds, "create:pg")
	require.Contains(t, cmds, "create:redis")
	require.Contains(t, cmds, "create:devobox")
	require.Contains(t, cmds, "start:pg")
	require.Contains(t, cmds, "start:redis")
	require.Contains(t, cmds, "start:devobox")

	healthCalls := 0
	for _, c := range cmds {
		if c == "health:pg" {
			healthCalls++
		}
	}
	assert.Equal(t, 3, healthCalls)

	assert.Less(t, indexOf(cmds, "create:pg"), indexOf(cmds, "start:pg"))
	assert.Less(t, indexOf(cmds, "create:devobox"), indexOf(cmds, "start:pg"))
	assert.Less(t, indexOf(cmds, "start:pg"), indexOf(cmds, "start:devobox"))
}

// S2: health timeout. pg reports Unhealthy on every poll with
// retries=3; up must fail with StartupFailed(pg) and redis (already
// started) is left running, no rollback.
func TestUp_HealthTimeout_FailsStartupFailedNoRollback(t *testing.T) {
	engine := testsupport.New()
	engine.SetHealthTrace("pg", []domain.ContainerHealth{domain.HealthUnhealthy})
	o := New(engine, &stubSession{})

	services := []domain.Service{dbService("pg"), noHealthcheckService("redis", domain.KindDatabase)}

	err := o.Up(context.Background(), services, FilterAll, hubSpec())
	require.Error(t, err)

	de, ok := domain.AsDevoboxError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CategoryStartupFailed, de.Category)
	assert.Equal(t, "pg", de.Service)

	state, _ := engine.State(context.Background(), "redis")
	assert.Equal(t, domain.ContainerRunning, state)
	assert.NotContains(t, engine.Commands(), "start:devobox")
}

func TestUp_FilterDatabase_ExcludesGenericServices(t *testing.T) {
	engine := testsupport.New()
	o := New(engine, &stubSession{})

	services := []domain.Service{
		noHealthcheckService("pg", domain.KindDatabase),
		noHealthcheckService("app", domain.KindGeneric),
	}

	err := o.Up(context.Background(), services, FilterDatabase, hubSpec())
	require.NoError(t, err)

	cmds := engine.Commands()
	assert.Contains(t, cmds, "create:pg")
	assert.NotContains(t, cmds, "create:app")
}

func TestDown_StopsEveryKnownContainer(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("devobox", domain.ContainerRunning)
	engine.AddContainer("pg", domain.ContainerRunning)
	o := New(engine, &stubSession{})

	o.Down(context.Background(), []string{"pg", "devobox"})

	assert.Equal(t, []string{"stop:pg", "stop:devobox"}, engine.Commands())
}

func TestCleanup_NoFlags_DefaultIsConservative(t *testing.T) {
	engine := testsupport.New()
	o := New(engine, &stubSession{})

	require.NoError(t, o.Cleanup(context.Background(), DefaultCleanup()))

	cmds := engine.Commands()
	assert.Contains(t, cmds, "prune:containers")
	assert.Contains(t, cmds, "prune:images")
	assert.Contains(t, cmds, "prune:build_cache")
	assert.NotContains(t, cmds, "prune:volumes")
}

func TestCleanup_Nuke_SkipsOtherPruneCalls(t *testing.T) {
	engine := testsupport.New()
	o := New(engine, &stubSession{})

	require.NoError(t, o.Cleanup(context.Background(), CleanupOptions{Nuke: true, Containers: true}))

	cmds := engine.Commands()
	assert.Equal(t, []string{"nuke_system"}, cmds)
}

func TestCleanup_ContinuesPastIndividualFailures(t *testing.T) {
	engine := testsupport.New()
	engine.SetFailOn("prune_images")
	o := New(engine, &stubSession{})

	require.NoError(t, o.Cleanup(context.Background(), CleanupOptions{Containers: true, Images: true, Volumes: true, BuildCache: true}))

	cmds := engine.Commands()
	assert.Contains(t, cmds, "prune:containers")
	assert.Contains(t, cmds, "prune:volumes")
	assert.Contains(t, cmds, "prune:build_cache")
}

// S6: shell workdir rebasing.
func TestRebaseWorkdir_InsideCodeRoot(t *testing.T) {
	got := RebaseWorkdir("/home/alice/code", "/home/alice/code/frontend/src", "/home/dev")
	assert.Equal(t, "/home/dev/code/frontend/src", got)
}

func TestRebaseWorkdir_AtCodeRoot(t *testing.T) {
	got := RebaseWorkdir("/home/alice/code", "/home/alice/code", "/home/dev")
	assert.Equal(t, "/home/dev/code", got)
}

func TestRebaseWorkdir_OutsideCodeRootFallsBackToHubWorkdir(t *testing.T) {
	got := RebaseWorkdir("/home/alice/code", "/tmp/elsewhere", "/home/dev")
	assert.Equal(t, "/home/dev", got)
}

func TestShell_AutoInitsWhenHubNotCreated(t *testing.T) {
	engine := testsupport.New()
	o := New(engine, &stubSession{})
	initCalled := false
	initFn := func(ctx context.Context) error {
		initCalled = true
		engine.AddContainer("devobox", domain.ContainerRunning)
		return nil
	}

	err := o.Shell(context.Background(), hubSpec(), nil, "/home/alice/code", "/home/alice/code", false, false, nil, initFn)
	require.NoError(t, err)
	assert.True(t, initCalled)
	assert.Contains(t, engine.Commands(), "exec_shell:devobox")
}

func TestShell_StartsStoppedHubWithoutInit(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("devobox", domain.ContainerStopped)
	o := New(engine, &stubSession{})

	err := o.Shell(context.Background(), hubSpec(), nil, "/home/alice/code", "/home/alice/code", false, false, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, engine.Commands(), "start:devobox")
	assert.Contains(t, engine.Commands(), "exec_shell:devobox")
}

func TestShell_AutoStopInvokesDownAfterExit(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("devobox", domain.ContainerRunning)
	o := New(engine, &stubSession{})

	err := o.Shell(context.Background(), hubSpec(), nil, "/home/alice/code", "/home/alice/code", false, true, []string{"devobox"}, nil)
	require.NoError(t, err)
	assert.Contains(t, engine.Commands(), "exec_shell:devobox")
	assert.Contains(t, engine.Commands(), "stop:devobox")
}

// StartServices/StopServices back the db/service command groups'
// start/stop actions over a kind-filtered subset, without touching the
// hub at all.
func TestStartServices_CreatesAndWaitsWithoutTouchingHub(t *testing.T) {
	engine := testsupport.New()
	o := New(engine, &stubSession{})

	err := o.StartServices(context.Background(), []domain.Service{noHealthcheckService("pg", domain.KindDatabase)})
	require.NoError(t, err)

	cmds := engine.Commands()
	assert.Contains(t, cmds, "create:pg")
	assert.Contains(t, cmds, "start:pg")
	assert.NotContains(t, cmds, "create:devobox")
	assert.NotContains(t, cmds, "start:devobox")
}

func TestStopServices_StopsOnlyTheGivenSubset(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("pg", domain.ContainerRunning)
	engine.AddContainer("devobox", domain.ContainerRunning)
	o := New(engine, &stubSession{})

	o.StopServices(context.Background(), []domain.Service{{Name: "pg"}})

	assert.Equal(t, []string{"stop:pg"}, engine.Commands())
}

// ProjectUp locates a project under the discovered code root, loads
// its own closure independent of the caller's, and opens one session
// pane per dependency project alongside its own, not per dependency
// service.
func TestProjectUp_StartsOwnClosureAndOpensSessionWithDependencyPanes(t *testing.T) {
	codeRoot := t.TempDir()

	apiDir := filepath.Join(codeRoot, "api")
	require.NoError(t, os.MkdirAll(apiDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "devobox.toml"), []byte(`
[project]
startup_command = "make dev"

[dependencies]
include_projects = ["../shared"]
`), 0o644))

	sharedDir := filepath.Join(codeRoot, "shared")
	require.NoError(t, os.MkdirAll(sharedDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sharedDir, "devobox.toml"), []byte(""), 0o644))

	disc, err := discovery.New(codeRoot)
	require.NoError(t, err)

	engine := testsupport.New()
	sess := &stubSession{}
	o := New(engine, sess)

	configDir := t.TempDir()
	err = o.ProjectUp(context.Background(), "api", configDir, "devobox", disc)
	require.NoError(t, err)

	assert.Equal(t, "devobox-api", sess.openedSession)
	assert.Equal(t, "api", sess.openedMain.Name)
	assert.Equal(t, apiDir, sess.openedMain.Path)
	assert.Equal(t, "make dev", sess.openedMain.StartupCommand)

	require.Len(t, sess.openedDeps, 1)
	assert.Equal(t, "shared", sess.openedDeps[0].Name)
	assert.Equal(t, sharedDir, sess.openedDeps[0].Path)
}

func TestProjectUp_UnknownProjectNameIsConfigError(t *testing.T) {
	codeRoot := t.TempDir()
	disc, err := discovery.New(codeRoot)
	require.NoError(t, err)

	engine := testsupport.New()
	o := New(engine, &stubSession{})

	err = o.ProjectUp(context.Background(), "ghost", t.TempDir(), "devobox", disc)
	require.Error(t, err)
	de, ok := domain.AsDevoboxError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CategoryConfig, de.Category)
}

func indexOf(items []string, target string) int {
	for i, v := range items {
		if v == target {
			return i
		}
	}
	return -1
}
