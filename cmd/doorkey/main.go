package main

import (
	"flag"
	"log"

	"github.com/robotalks/rfdoor/pkg/config"
	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/env/unit"
)

func init() {
	config.SetRole(config.RoleTransmitter)
	config.SetupFlags()
}

func main() {
	flag.Parse()

	conf := config.MustLoad()
	if conf.Unit.Role != config.RoleTransmitter {
		log.Fatalf("unit %s is a %s", conf.UnitID(), conf.Unit.Role)
	}
	env := unit.MustNewEnv(conf)
	defer env.Close()

	loop := fx.NewLoop().Add(env, env.MustController())
	if err := fx.NewRunner().HandleSignals().Go(loop).Wait(); err != nil {
		log.Fatalln(err)
	}
}
