// Command devobox orchestrates a persistent development container and
// its auxiliary services over a rootless OCI engine.
package main

import "github.com/devobox/devobox/cmd"

func main() {
	cmd.Execute()
}
