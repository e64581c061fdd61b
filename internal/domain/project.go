package domain

import "fmt"

// PathsConfig names the two manifest-relative files the loader reads
// for an image build: the containerfile template and the services
// manifest.
type PathsConfig struct {
	Containerfile string `mapstructure:"containerfile"`
	ServicesYML   string `mapstructure:"services_yml"`
}

// BuildConfig names the image tag produced by `devobox build`.
type BuildConfig struct {
	ImageName string `mapstructure:"image_name"`
}

// ContainerConfig names the hub's container identity.
type ContainerConfig struct {
	Name    string `mapstructure:"name"`
	Workdir string `mapstructure:"workdir"`
}

// DependenciesConfig lists other projects whose services are folded
// into this manifest's closure.
type DependenciesConfig struct {
	IncludeProjects []string `mapstructure:"include_projects"`
}

// ProjectSettings is the optional `[project]` section of a manifest: it
// lets a project override its own discovered name, declare additional
// environment variables for its hub-side session, pick a shell, and
// name the command project_up runs in its session's first pane.
// Grounded on original_source's ProjectSettings (domain/project.rs),
// required to implement project_up's documented startup_command
// behavior even though devobox.toml's illustrative format in the
// manifest-formats section only shows paths/build/container/dependencies.
type ProjectSettings struct {
	Name           string   `mapstructure:"name"`
	Env            []string `mapstructure:"env"`
	Shell          string   `mapstructure:"shell"`
	StartupCommand string   `mapstructure:"startup_command"`
}

// AppConfig is the global-or-local manifest: the result of layering
// built-in defaults, the global devobox.toml, and (if present) a local
// devobox.toml over it, field by field, with list fields replaced
// rather than merged.
type AppConfig struct {
	Paths        PathsConfig
	Build        BuildConfig
	Container    ContainerConfig
	Dependencies DependenciesConfig
	Project      *ProjectSettings

	// SchemaVersion is an optional semver string a manifest may declare
	// to let future devobox versions warn about a manifest written
	// against a newer schema than they understand, instead of silently
	// misreading unknown fields.
	SchemaVersion string
}

// SupportedSchemaMajor is the highest manifest schema major version
// this build understands.
const SupportedSchemaMajor uint64 = 1

// Project is a directory under the configured code root that contains
// a local manifest.
type Project struct {
	Name   string
	Path   string
	Config AppConfig
}

// SessionName is the multiplexer session name this project attaches
// to from within the hub: "<hub>-<project>".
func (p *Project) SessionName(hub string) string {
	return fmt.Sprintf("%s-%s", hub, p.Name)
}

// EnvVars returns the project's declared environment variables, or an
// empty slice if none are configured.
func (p *Project) EnvVars() []string {
	if p.Config.Project == nil {
		return nil
	}
	return p.Config.Project.Env
}

// Shell returns the project's preferred shell, or "" if unset.
func (p *Project) Shell() string {
	if p.Config.Project == nil {
		return ""
	}
	return p.Config.Project.Shell
}

// StartupCommand returns the command project_up runs in the session's
// first pane, or "" if none is configured.
func (p *Project) StartupCommand() string {
	if p.Config.Project == nil {
		return ""
	}
	return p.Config.Project.StartupCommand
}
