// Package all registers every bench command.
package all

import (
	// register commands
	_ "github.com/robotalks/rfdoor/pkg/cli/cmds/door"
	_ "github.com/robotalks/rfdoor/pkg/cli/cmds/radio"
	_ "github.com/robotalks/rfdoor/pkg/cli/cmds/serial"
	_ "github.com/robotalks/rfdoor/pkg/cli/cmds/sim"
)
