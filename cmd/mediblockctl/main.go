// Command mediblockctl runs MediBlock operations against a local LevelDB world
// state. It is meant for development and demos without a Fabric network.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
