package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rfdoor/pkg/bench"
	"github.com/robotalks/rfdoor/pkg/config"
)

// Shell provides ishell backed interactive shell over a bench.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Bench *bench.Bench
}

// CmdFunc runs a command on the bench. The result is printed as JSON
// with -json, else with fmt.
type CmdFunc func(b *bench.Bench, args []string) (interface{}, error)

const (
	shellKey = "$shell"
	prompt   = "bench > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	doorConfig string
	keyConfig  string

	commands []*ishell.Cmd
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&doorConfig, "door", doorConfig, "Door unit config file (YAML).")
	flag.StringVar(&keyConfig, "key", keyConfig, "Handheld unit config file (YAML).")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// Commands returns the registered commands.
func Commands() []*ishell.Cmd {
	return commands
}

// New creates a new shell.
func New(b *bench.Bench) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell: ishell.New(),
		Bench: b,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Format renders a command result.
func Format(res interface{}, asJSON bool) (string, error) {
	if asJSON {
		out, err := json.Marshal(res)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	switch v := res.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return fmt.Sprint(res), nil
}

// BenchCmd adapts fn to an ishell command func.
func BenchCmd(fn CmdFunc) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		res, err := fn(s.Bench, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		if res == nil {
			return
		}
		out, err := Format(res, s.OutputJSON)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(out)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Printf("door %s, key %s\n", s.Bench.Door.Config.UnitID(), s.Bench.Key.Config.UnitID())
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// NewBench creates the bench from -door and -key, defaults otherwise.
func NewBench() (*bench.Bench, error) {
	doorConf, keyConf := bench.DefaultConfigs()
	var err error
	if doorConfig != "" {
		if doorConf, err = config.Load(doorConfig); err != nil {
			return nil, err
		}
	}
	if keyConfig != "" {
		if keyConf, err = config.Load(keyConfig); err != nil {
			return nil, err
		}
	}
	return bench.New(doorConf, keyConf)
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	b, err := NewBench()
	if err != nil {
		log.Fatalln(err)
	}
	New(b).Run(flag.Args()...)
}
