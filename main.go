package main

import "github.com/brightloop/screencap/cmd"

// version is set via ldflags during build.
var version = "0.1.0-dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
