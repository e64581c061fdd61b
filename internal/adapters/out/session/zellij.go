// Package session implements the Session port against the zellij
// terminal multiplexer, run inside the hub container and reached
// through Engine.ExecShell rather than invoked on the host directly.
// Grounded on original_source/src/services/zellij_service.rs, adapted
// for the fact that devobox's zellij process lives in the hub's mount
// namespace: generating a layout file and attaching to it collapse
// into a single exec since the adapter has no separate file-copy
// primitive into the container.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/devobox/devobox/internal/boundaries/out"
)

const defaultLayoutHeader = `layout {
    default_tab_template {
        pane size=1 borderless=true {
            plugin location="zellij:tab-bar"
        }
        children
        pane size=1 borderless=true {
            plugin location="zellij:status-bar"
        }
    }
`

// Zellij implements out.Session by shelling into the hub container.
type Zellij struct {
	engine  out.Engine
	hubName string
}

// New returns a Session adapter that reaches zellij inside hubName
// through engine.
func New(engine out.Engine, hubName string) *Zellij {
	return &Zellij{engine: engine, hubName: hubName}
}

// OpenOrAttach attaches to sessionName if it exists, otherwise creates
// it rooted at workdir with no generated layout (default zellij tab).
func (z *Zellij) OpenOrAttach(sessionName, workdir string) error {
	cmd := []string{"zellij", "attach", "--create", sessionName}
	_, err := z.engine.ExecShell(context.Background(), z.hubName, workdir, cmd)
	return err
}

// OpenProject opens or attaches sessionName, generating a multi-pane
// layout (main project tab focused, one tab per dependency) the first
// time the session is created. Re-attaching to an existing session
// ignores main/dependencies: zellij layouts only apply at creation.
func (z *Zellij) OpenProject(sessionName string, main out.ProjectPane, dependencies []out.ProjectPane) error {
	exists, err := z.sessionExists(sessionName)
	if err != nil {
		return err
	}
	if exists {
		cmd := []string{"zellij", "attach", sessionName}
		_, err := z.engine.ExecShell(context.Background(), z.hubName, main.Path, cmd)
		return err
	}

	layout := generateLayout(main, dependencies)
	layoutPath := fmt.Sprintf("/tmp/devobox-%s-%s.kdl", sessionName, uuid.NewString())

	script := fmt.Sprintf(
		"cat > %s <<'DEVOBOX_LAYOUT_EOF'\n%s\nDEVOBOX_LAYOUT_EOF\nexec zellij attach --create %s --layout %s\n",
		layoutPath, layout, sessionName, layoutPath,
	)
	cmd := []string{"sh", "-c", script}
	_, err = z.engine.ExecShell(context.Background(), z.hubName, main.Path, cmd)
	return err
}

// List runs `zellij list-sessions` inside the hub. The listing goes to
// the attached terminal and is not captured, so List returns a nil
// slice on success; it does not report session names.
func (z *Zellij) List() ([]string, error) {
	exitCode, err := z.engine.ExecShell(context.Background(), z.hubName, "", []string{"sh", "-c", "zellij list-sessions -n || true"})
	if err != nil {
		return nil, err
	}
	if exitCode != 0 {
		return nil, nil
	}
	// zellij writes its session list to the attached terminal; callers
	// needing a machine-readable list should prefer sessionExists.
	return nil, nil
}

// Kill deletes sessionName.
func (z *Zellij) Kill(sessionName string) error {
	cmd := []string{"zellij", "delete-session", sessionName}
	_, err := z.engine.ExecShell(context.Background(), z.hubName, "", cmd)
	return err
}

func (z *Zellij) sessionExists(sessionName string) (bool, error) {
	script := fmt.Sprintf("zellij list-sessions 2>/dev/null | grep -q %q", sessionName)
	exitCode, err := z.engine.ExecShell(context.Background(), z.hubName, "", []string{"sh", "-c", script})
	if err != nil {
		return false, err
	}
	return exitCode == 0, nil
}

// generateLayout renders the KDL layout text for a project session:
// the shared tab/status bar header, the focused main project tab, and
// one unfocused tab per dependency.
func generateLayout(main out.ProjectPane, dependencies []out.ProjectPane) string {
	var b strings.Builder
	b.WriteString(defaultLayoutHeader)
	writeProjectTab(&b, main, true)
	for _, dep := range dependencies {
		writeProjectTab(&b, dep, false)
	}
	b.WriteString("}\n")
	return b.String()
}

func writeProjectTab(b *strings.Builder, pane out.ProjectPane, focus bool) {
	focusAttr := ""
	if focus {
		focusAttr = "focus=true"
	}
	fmt.Fprintf(b, "    tab name=%q %s {\n", pane.Name, focusAttr)
	fmt.Fprintf(b, "        pane cwd=%q {\n", pane.Path)

	if cmd := strings.TrimSpace(pane.StartupCommand); cmd != "" {
		parts := strings.Fields(cmd)
		fmt.Fprintf(b, "            command %q\n", parts[0])
		if len(parts) > 1 {
			quoted := make([]string, len(parts)-1)
			for i, a := range parts[1:] {
				quoted[i] = fmt.Sprintf("%q", a)
			}
			fmt.Fprintf(b, "            args %s\n", strings.Join(quoted, " "))
		}
	}

	b.WriteString("        }\n")
	b.WriteString("    }\n")
}
