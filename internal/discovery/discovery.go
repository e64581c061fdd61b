// Package discovery enumerates candidate projects under a configured
// code root. Grounded line-for-line on
// original_source/src/infra/project_discovery.rs.
package discovery

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/devobox/devobox/internal/config"
	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/logging"
)

// ProjectDiscovery scans the immediate children of a base directory
// for subdirectories containing a local manifest.
type ProjectDiscovery struct {
	baseDir string
}

// New creates a ProjectDiscovery rooted at baseDir, creating it if it
// does not yet exist. An empty baseDir defaults to config.CodeRoot().
func New(baseDir string) (*ProjectDiscovery, error) {
	if baseDir == "" {
		baseDir = config.CodeRoot()
	}
	if _, err := os.Stat(baseDir); err != nil {
		logging.Get().Info("project directory does not exist, creating", "dir", baseDir)
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, domain.WrapConfigError(err, "creating project directory %s", baseDir)
		}
	}
	return &ProjectDiscovery{baseDir: baseDir}, nil
}

// BaseDir returns the directory being scanned.
func (d *ProjectDiscovery) BaseDir() string {
	return d.baseDir
}

// DiscoverAll lists every direct child of the base directory that
// contains a devobox.toml, sorted by name. Only direct children are
// scanned; there is no recursive descent and no symlink traversal
// beyond the root. A project whose manifest fails to load is skipped
// and logged, not fatal to the overall scan.
func (d *ProjectDiscovery) DiscoverAll() ([]domain.Project, error) {
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		return nil, domain.WrapConfigError(err, "reading project directory %s", d.baseDir)
	}

	var projects []domain.Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(d.baseDir, entry.Name())
		manifestPath := filepath.Join(path, config.ManifestFile)
		if _, err := os.Stat(manifestPath); err != nil {
			logging.Get().Debug("skipping directory without manifest", "dir", entry.Name())
			continue
		}

		cfg, err := config.LoadManifest(manifestPath)
		if err != nil {
			logging.Get().Debug("failed to load project, skipping", "dir", entry.Name(), "err", err)
			continue
		}

		project := domain.Project{
			Name:   entry.Name(),
			Path:   path,
			Config: cfg,
		}
		if cfg.Project != nil && cfg.Project.Name != "" {
			project.Name = cfg.Project.Name
		}
		projects = append(projects, project)
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// FindProject returns the project named name, or nil if no directory
// under the base dir resolves to that name.
func (d *ProjectDiscovery) FindProject(name string) (*domain.Project, error) {
	projects, err := d.DiscoverAll()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], nil
		}
	}
	return nil, nil
}
