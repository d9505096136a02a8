package main

import (
	"flag"
	"log"

	"github.com/robotalks/rfdoor/pkg/config"
	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/env/unit"
)

var diagMode = flag.String("diag", "", "run a diagnostic instead of the door logic: echo|rf")

func init() {
	config.SetRole(config.RoleReceiver)
	config.SetupFlags()
}

func main() {
	flag.Parse()

	conf := config.MustLoad()
	env := unit.MustNewEnv(conf)
	defer env.Close()
	var ctl fx.LoopAdder
	if *diagMode != "" {
		ctl = env.MustDiagnostic(*diagMode)
	} else {
		ctl = env.MustController()
	}

	loop := fx.NewLoop().Add(env, ctl)
	if err := fx.NewRunner().HandleSignals().Go(loop).Wait(); err != nil {
		log.Fatalln(err)
	}
}
