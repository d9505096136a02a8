package main

import (
	"github.com/robotalks/rfdoor/pkg/cli/sh"

	_ "github.com/robotalks/rfdoor/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
