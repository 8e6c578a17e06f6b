package main

import (
	"github.com/robotalks/tagpad/pkg/cli/sh"

	_ "github.com/robotalks/tagpad/pkg/cli/cmds/device"
)

//go-build: CGO_ENABLED=0

func init() {
	sh.SetupFlags()
}

func main() {
	sh.Main()
}
