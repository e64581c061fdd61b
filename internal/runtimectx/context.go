// Package runtimectx detects whether the current process is running
// on the host or inside the hub container, the fact the CLI dispatcher
// uses to refuse `project up` when run from the host. Grounded on
// original_source/src/cli/context.rs.
package runtimectx

import "os"

// Context is the runtime context a devobox invocation is executing in.
type Context int

const (
	// Host is the default: the process runs on the developer's
	// machine, outside any devobox container.
	Host Context = iota
	// Container is set when the process runs inside the hub.
	Container
)

func (c Context) String() string {
	if c == Container {
		return "Container"
	}
	return "Host"
}

// IsHost reports whether c is Host.
func (c Context) IsHost() bool { return c == Host }

// IsContainer reports whether c is Container.
func (c Context) IsContainer() bool { return c == Container }

// Detect determines the current runtime context: the DEVOBOX_CONTAINER
// environment variable, when set, takes priority; absent that, the
// standard container marker files are checked.
func Detect() Context {
	if _, ok := os.LookupEnv("DEVOBOX_CONTAINER"); ok {
		return Container
	}
	if isInsideContainer() {
		return Container
	}
	return Host
}

// isInsideContainer checks for the marker files Docker/Podman leave in
// every container's root filesystem.
func isInsideContainer() bool {
	for _, marker := range []string{"/.dockerenv", "/run/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}
	return false
}
