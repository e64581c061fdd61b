package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(content), 0o644))
}

func writeServices(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_LocalOverridesGlobalFieldByField(t *testing.T) {
	globalDir := t.TempDir()
	localDir := t.TempDir()

	writeManifest(t, globalDir, `
[container]
name = "devobox"
workdir = "/home/dev"

[build]
image_name = "global-img"
`)
	writeManifest(t, localDir, `
[build]
image_name = "local-img"
`)

	cfg, _, err := Load(globalDir, localDir)
	require.NoError(t, err)

	assert.Equal(t, "local-img", cfg.Build.ImageName)
	assert.Equal(t, "devobox", cfg.Container.Name, "unspecified local fields must preserve the global value")
	assert.Equal(t, "/home/dev", cfg.Container.Workdir)
}

func TestLoad_ListFieldsReplaceNotMerge(t *testing.T) {
	globalDir := t.TempDir()
	localDir := t.TempDir()

	writeManifest(t, globalDir, `
[dependencies]
include_projects = ["../a", "../b"]
`)
	writeManifest(t, localDir, `
[dependencies]
include_projects = ["../c"]
`)
	// The local include must resolve to a real project for Load to succeed.
	cDir := filepath.Join(localDir, "..", "c")
	require.NoError(t, os.MkdirAll(cDir, 0o755))
	writeManifest(t, cDir, "")

	cfg, _, err := Load(globalDir, localDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"../c"}, cfg.Dependencies.IncludeProjects)
}

func TestLoad_ServicesManifestMappingShape(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[paths]
services_yml = "services.yml"
`)
	writeServices(t, dir, "services.yml", `
services:
  - name: pg
    image: postgres:16
    ports: ["5432:5432"]
`)

	_, services, err := Load(dir, dir)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "pg", services[0].Name)
}

func TestLoad_ServicesManifestSequenceShape(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[paths]
services_yml = "services.yml"
`)
	writeServices(t, dir, "services.yml", `
- name: redis
  image: redis:7
`)

	_, services, err := Load(dir, dir)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "redis", services[0].Name)
}

func TestLoad_DependencyClosurePrependsDependencyServices(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.MkdirAll(a, 0o755))
	require.NoError(t, os.MkdirAll(b, 0o755))

	writeManifest(t, a, `
[paths]
services_yml = "services.yml"

[dependencies]
include_projects = ["../b"]
`)
	writeServices(t, a, "services.yml", `
- name: app
  image: app:latest
`)

	writeManifest(t, b, `
[paths]
services_yml = "services.yml"
`)
	writeServices(t, b, "services.yml", `
- name: db
  image: postgres:16
`)

	_, services, err := Load(a, a)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "db", services[0].Name, "dependency services load before the including project's own services")
	assert.Equal(t, "app", services[1].Name)
}

func TestLoad_CycleDetected(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.MkdirAll(a, 0o755))
	require.NoError(t, os.MkdirAll(b, 0o755))

	writeManifest(t, a, `
[dependencies]
include_projects = ["../b"]
`)
	writeManifest(t, b, `
[dependencies]
include_projects = ["../a"]
`)

	_, _, err := Load(a, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLoad_DuplicateServiceNameAcrossClosureRejected(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.MkdirAll(a, 0o755))
	require.NoError(t, os.MkdirAll(b, 0o755))

	writeManifest(t, a, `
[paths]
services_yml = "services.yml"

[dependencies]
include_projects = ["../b"]
`)
	writeServices(t, a, "services.yml", `
- name: cache
  image: redis:7
`)
	writeManifest(t, b, `
[paths]
services_yml = "services.yml"
`)
	writeServices(t, b, "services.yml", `
- name: cache
  image: redis:6
`)

	_, _, err := Load(a, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate service name")
}

func TestLoad_HubNameCollisionRejected(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[container]
name = "devobox"

[paths]
services_yml = "services.yml"
`)
	writeServices(t, dir, "services.yml", `
- name: devobox
  image: whatever:latest
`)

	_, _, err := Load(dir, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides with the hub name")
}

func TestLoad_SchemaVersionIsCarriedThrough(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
schema_version = "1.2.0"
`)

	cfg, _, err := Load(dir, dir)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", cfg.SchemaVersion)
}

func TestLoad_FutureMajorSchemaVersionDoesNotFailLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
schema_version = "2.0.0"
`)

	_, _, err := Load(dir, dir)
	require.NoError(t, err, "an unsupported schema major warns, it does not reject the manifest")
}

func TestLoad_EmptyServicesListIsValid(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[container]
name = "devobox"
`)

	_, services, err := Load(dir, dir)
	require.NoError(t, err)
	assert.Empty(t, services)
}
