// Package config loads, layers, and validates devobox's manifests:
// the per-directory AppConfig (devobox.toml) and the services manifest
// it points to, folding in the recursive dependency closure.
package config

import (
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"

	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/logging"
)

// DefaultHubName is the reserved container name for the hub; it is not
// valid as a service name.
const DefaultHubName = "devobox"

// ManifestFile is the filename viper reads at each layer.
const ManifestFile = "devobox.toml"

// Defaults returns the built-in AppConfig defaults, the first layer of
// the resolution order.
func Defaults() domain.AppConfig {
	return domain.AppConfig{
		Paths: domain.PathsConfig{
			Containerfile: "Containerfile",
			ServicesYML:   "services.yml",
		},
		Build: domain.BuildConfig{
			ImageName: "devobox-img",
		},
		Container: domain.ContainerConfig{
			Name:    DefaultHubName,
			Workdir: "/home/dev",
		},
	}
}

// DefaultConfigDir resolves $XDG_CONFIG_HOME/devobox, falling back to
// $HOME/.config/devobox.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "devobox")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/home/dev"
	}
	return filepath.Join(home, ".config", "devobox")
}

// CodeRoot resolves $DEVOBOX_CODE_DIR, falling back to $HOME/code.
func CodeRoot() string {
	if dir := os.Getenv("DEVOBOX_CODE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/home/dev"
	}
	return filepath.Join(home, "code")
}

// Load resolves the three-layer AppConfig (defaults, global, local) for
// a given config directory and working directory, then closes over its
// dependency closure to produce the final service list.
func Load(configDir, workDir string) (domain.AppConfig, []domain.Service, error) {
	cfg := Defaults()

	global := filepath.Join(configDir, ManifestFile)
	if err := overlayManifest(&cfg, global); err != nil {
		return cfg, nil, err
	}

	local := filepath.Join(workDir, ManifestFile)
	if local != global {
		if err := overlayManifest(&cfg, local); err != nil {
			return cfg, nil, err
		}
	}

	services, err := resolveClosure(workDir, &cfg)
	if err != nil {
		return cfg, nil, err
	}

	if err := validateClosure(cfg, services); err != nil {
		return cfg, nil, err
	}

	return cfg, services, nil
}

// LoadManifest parses a single devobox.toml onto the built-in defaults,
// with no global-layer overlay and no dependency-closure resolution —
// the shape project discovery needs to read a project's identity and
// `[project]` settings without pulling in its whole dependency graph.
func LoadManifest(path string) (domain.AppConfig, error) {
	cfg := Defaults()
	if err := overlayManifest(&cfg, path); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// overlayManifest reads path, if present, into a fresh viper instance
// and overlays every field it declares onto cfg. Fields absent from the
// file are left untouched — this is the "unspecified local fields
// preserve the global value exactly" invariant (spec's monotone
// merging property) — and list fields that ARE declared replace the
// prior layer's slice wholesale rather than merging into it, per the
// resolved Open Question on list-field semantics: viper's own
// Unmarshal would deep-merge slices across config instances, which is
// why each layer gets its own fresh *viper.Viper and fields are copied
// by hand instead of calling a single shared MergeInConfig.
func overlayManifest(cfg *domain.AppConfig, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return domain.WrapConfigError(err, "parsing manifest %s", path)
	}

	if v.IsSet("paths.containerfile") {
		cfg.Paths.Containerfile = v.GetString("paths.containerfile")
	}
	if v.IsSet("paths.services_yml") {
		cfg.Paths.ServicesYML = v.GetString("paths.services_yml")
	}
	if v.IsSet("build.image_name") {
		cfg.Build.ImageName = v.GetString("build.image_name")
	}
	if v.IsSet("container.name") {
		cfg.Container.Name = v.GetString("container.name")
	}
	if v.IsSet("container.workdir") {
		cfg.Container.Workdir = v.GetString("container.workdir")
	}
	if v.IsSet("dependencies.include_projects") {
		cfg.Dependencies.IncludeProjects = v.GetStringSlice("dependencies.include_projects")
	}
	if v.IsSet("schema_version") {
		cfg.SchemaVersion = v.GetString("schema_version")
		warnOnUnsupportedSchema(path, cfg.SchemaVersion)
	}
	if v.IsSet("project") {
		p := cfg.Project
		if p == nil {
			p = &domain.ProjectSettings{}
		}
		if v.IsSet("project.name") {
			p.Name = v.GetString("project.name")
		}
		if v.IsSet("project.env") {
			p.Env = v.GetStringSlice("project.env")
		}
		if v.IsSet("project.shell") {
			p.Shell = v.GetString("project.shell")
		}
		if v.IsSet("project.startup_command") {
			p.StartupCommand = v.GetString("project.startup_command")
		}
		cfg.Project = p
	}

	return nil
}

// warnOnUnsupportedSchema logs a warning, rather than failing the
// load, when a manifest declares a schema_version whose major is newer
// than this build understands: forward-compatible evolution means an
// older devobox binary still runs against such a manifest, just with a
// heads-up that some fields it doesn't recognize may be silently
// ignored. A newer minor/patch within the supported major loads
// without a warning. An invalid version string is warned about, not
// rejected.
func warnOnUnsupportedSchema(path, declared string) {
	v, err := semver.NewVersion(declared)
	if err != nil {
		logging.Get().Warn("manifest declares an unparseable schema_version", "manifest", path, "schema_version", declared)
		return
	}
	if v.Major() > domain.SupportedSchemaMajor {
		logging.Get().Warn("manifest schema_version is newer than this build supports, some fields may be ignored",
			"manifest", path, "schema_version", declared, "supported_major", domain.SupportedSchemaMajor)
	}
}
