// Package sh is an interactive shell driving a simulated bench. Command
// packages register their commands with AddCmds in init.
package sh
