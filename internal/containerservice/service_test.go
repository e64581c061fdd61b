package containerservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/testsupport"
)

func TestEnsureCreated_CreatesWhenNotCreated(t *testing.T) {
	engine := testsupport.New()
	svc := New(engine)
	spec := &domain.ContainerSpec{Name: "pg", Image: "postgres:16"}

	require.NoError(t, svc.EnsureCreated(context.Background(), spec))
	assert.Contains(t, engine.Commands(), "create:pg")
}

func TestEnsureCreated_NoopWhenAlreadyCreated(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("pg", domain.ContainerStopped)
	svc := New(engine)

	require.NoError(t, svc.EnsureCreated(context.Background(), &domain.ContainerSpec{Name: "pg"}))
	assert.NotContains(t, engine.Commands(), "create:pg")
}

func TestEnsureRunning_StartsStoppedContainer(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("pg", domain.ContainerStopped)
	svc := New(engine)

	require.NoError(t, svc.EnsureRunning(context.Background(), "pg"))
	assert.Contains(t, engine.Commands(), "start:pg")
}

func TestEnsureRunning_NoopWhenRunning(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("pg", domain.ContainerRunning)
	svc := New(engine)

	require.NoError(t, svc.EnsureRunning(context.Background(), "pg"))
	assert.NotContains(t, engine.Commands(), "start:pg")
}

func TestEnsureRunning_FailsWithRemedyWhenNotCreated(t *testing.T) {
	engine := testsupport.New()
	svc := New(engine)

	err := svc.EnsureRunning(context.Background(), "pg")
	require.Error(t, err)
	de, ok := domain.AsDevoboxError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CategoryMissingContainer, de.Category)
}

func TestRecreate_RemovesThenCreates(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("pg", domain.ContainerRunning)
	svc := New(engine)

	require.NoError(t, svc.Recreate(context.Background(), &domain.ContainerSpec{Name: "pg"}))

	cmds := engine.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "remove:pg", cmds[0])
	assert.Equal(t, "create:pg", cmds[1])
}

func TestStopAll_ContinuesPastIndividualFailures(t *testing.T) {
	engine := testsupport.New()
	engine.AddContainer("a", domain.ContainerRunning)
	engine.AddContainer("b", domain.ContainerRunning)
	engine.SetFailOn("stop")
	svc := New(engine)

	// StopAll must not panic or short-circuit even though every stop fails.
	svc.StopAll(context.Background(), []string{"a", "b"})
	assert.Equal(t, []string{"stop:a", "stop:b"}, engine.Commands())
}

func TestHubSpec_FixedChoices(t *testing.T) {
	cfg := domain.AppConfig{
		Build:     domain.BuildConfig{ImageName: "devobox-img"},
		Container: domain.ContainerConfig{Name: "devobox", Workdir: "/home/dev"},
	}

	spec := HubSpec(cfg, "/home/alice/code")

	assert.Equal(t, "devobox", spec.Name)
	assert.Equal(t, "host", spec.Network)
	assert.Equal(t, "keep-id", spec.Userns)
	assert.Equal(t, "label=disable", spec.SecurityOpt)
	assert.Equal(t, []string{"-it"}, spec.ExtraArgs)
	assert.False(t, spec.HasHealthcheck())
	require.NotEmpty(t, spec.Volumes)
	assert.Contains(t, spec.Volumes[0], "/home/alice/code:")
}
