package config

import (
	"os"
	"path/filepath"

	"github.com/devobox/devobox/internal/domain"
)

// resolveClosure loads workDir's own services manifest, then walks
// cfg.Dependencies.IncludeProjects recursively, appending each included
// project's services in preorder. Two sets of canonicalized absolute
// paths drive the traversal: `visiting` tracks the current recursion
// stack (a path reappearing here is a genuine cycle, rejected as a
// ConfigError naming both ends), and `done` tracks paths whose closure
// has already been fully computed in an earlier branch (a path
// reappearing here is a harmless diamond dependency — it contributes
// an empty slice rather than re-walking or erroring, per spec §4.3/§9).
// No topological sort is performed: no cross-service ordering beyond
// load order is promised, so a flat visited-set DFS suffices. This is
// a deliberately simpler structure than, e.g., docker-compose's
// pkg/compose/dependencies.go graphTraversal, which solves up/down
// traversal with per-service concurrency limits over a live compose
// graph — a materially different and harder problem than devobox's
// flat, load-order closure.
func resolveClosure(workDir string, cfg *domain.AppConfig) ([]domain.Service, error) {
	visiting := make(map[string]bool)
	done := make(map[string]bool)
	return loadClosure(workDir, cfg, visiting, done)
}

func loadClosure(dir string, cfg *domain.AppConfig, visiting, done map[string]bool) ([]domain.Service, error) {
	canon, err := filepath.Abs(dir)
	if err != nil {
		return nil, domain.WrapConfigError(err, "resolving path %s", dir)
	}
	visiting[canon] = true
	defer func() {
		delete(visiting, canon)
		done[canon] = true
	}()

	var services []domain.Service

	for _, rel := range cfg.Dependencies.IncludeProjects {
		depPath := rel
		if !filepath.IsAbs(depPath) {
			depPath = filepath.Join(dir, depPath)
		}
		depCanon, err := filepath.Abs(depPath)
		if err != nil {
			return nil, domain.WrapConfigError(err, "resolving dependency path %s", rel)
		}

		if visiting[depCanon] {
			return nil, domain.NewConfigError("dependency cycle detected between %s and %s", canon, depCanon)
		}
		if done[depCanon] {
			continue
		}

		depManifest := filepath.Join(depCanon, ManifestFile)
		if _, statErr := os.Stat(depManifest); statErr != nil {
			return nil, domain.NewConfigError("include_projects path %s has no readable manifest", rel)
		}
		depCfg := Defaults()
		if err := overlayManifest(&depCfg, depManifest); err != nil {
			return nil, err
		}

		depServices, err := loadClosure(depCanon, &depCfg, visiting, done)
		if err != nil {
			return nil, err
		}
		services = append(services, depServices...)
	}

	ownServicesPath := filepath.Join(dir, cfg.Paths.ServicesYML)
	own, err := loadServices(ownServicesPath)
	if err != nil {
		return nil, err
	}
	services = append(services, own...)

	return services, nil
}
