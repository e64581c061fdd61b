// Package assets embeds devobox's default manifest templates and
// installs them into a config directory. Grounded on
// original_source/src/infra/config.rs's copy_template_if_missing, and
// on the teacher's embed.go for the go:embed + sub-filesystem idiom.
package assets

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/devobox/devobox/internal/domain"
	"github.com/devobox/devobox/internal/logging"
)

//go:embed templates/*
var templatesFS embed.FS

// TemplateFiles lists every file install copies, in the order spec
// §6's persisted-state layout names them: the manifest, the
// containerfile, the services manifest, and the two pass-through
// dotfiles.
var TemplateFiles = []string{
	"devobox.toml",
	"Containerfile",
	"services.yml",
	"mise.toml",
	"starship.toml",
}

// Install copies every template into targetDir, skipping files that
// already exist there — install never overwrites a user's edits.
func Install(targetDir string) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return domain.WrapConfigError(err, "creating config directory %s", targetDir)
	}

	for _, name := range TemplateFiles {
		target := filepath.Join(targetDir, name)
		if _, err := os.Stat(target); err == nil {
			logging.Get().Debug("skipping existing file", "file", name)
			continue
		}

		data, err := fs.ReadFile(templatesFS, "templates/"+name)
		if err != nil {
			return domain.WrapConfigError(err, "reading embedded template %s", name)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return domain.WrapConfigError(err, "writing %s", target)
		}
		logging.Get().Info("installed default template", "file", name)
	}

	return nil
}
