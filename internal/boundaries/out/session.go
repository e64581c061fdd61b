package out

// Session is the capability wrapper around the terminal multiplexer.
// It is hosted inside the hub container: the adapter ultimately invokes
// the multiplexer through Engine.ExecShell.
type Session interface {
	// OpenOrAttach attaches to sessionName if it already exists,
	// otherwise creates it (rooted at workdir) and attaches. Attaching
	// replaces the calling process's terminal foreground; it returns
	// once the user detaches or the session ends.
	OpenOrAttach(sessionName, workdir string) error

	// OpenProject opens or attaches a project's session, generating a
	// multi-pane layout (main project tab focused, one tab per
	// dependency) the first time the session is created.
	OpenProject(sessionName string, main ProjectPane, dependencies []ProjectPane) error

	List() ([]string, error)

	Kill(sessionName string) error
}

// ProjectPane describes one tab of a generated project session layout.
type ProjectPane struct {
	Name           string
	Path           string
	StartupCommand string
}
