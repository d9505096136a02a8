package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/robotalks/rfdoor/pkg/comm/cache"
	"github.com/robotalks/rfdoor/pkg/comm/mqtt"
	"github.com/robotalks/rfdoor/pkg/comm/stream"
	"github.com/robotalks/rfdoor/pkg/comm/websocket"
	"github.com/robotalks/rfdoor/pkg/config"
	"github.com/robotalks/rfdoor/pkg/console"
	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/monitor"
)

var (
	listenAddr  string
	serialDev   string
	serialBaud  = 2400
	consoleUnit = "console"
	replayFile  string
	quiet       bool
)

func init() {
	config.SetupFlags()
	flag.StringVar(&listenAddr, "listen", listenAddr, "Serve websocket clients at ADDR, path /events")
	flag.StringVar(&serialDev, "serial", serialDev, "Read a unit console from this serial device")
	flag.IntVar(&serialBaud, "baud", serialBaud, "Baud rate of -serial")
	flag.StringVar(&consoleUnit, "console-unit", consoleUnit, "Unit name of events decoded from -serial")
	flag.StringVar(&replayFile, "replay", replayFile, "Replay a capture file before watching")
	flag.BoolVar(&quiet, "quiet", quiet, "Do not log every message")
}

func main() {
	flag.Parse()
	conf := config.MustLoad()

	var store cache.Store = cache.NewMemory()
	if conf.Events.Redis != "" {
		r := cache.NewRedis(conf.Events.Redis)
		defer r.Close()
		store = r
	}
	hub := monitor.NewHub(store)
	hub.Log = !quiet

	if conf.Events.Capture != "" {
		f, err := os.OpenFile(conf.Events.Capture, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalln(err)
		}
		defer f.Close()
		hub.Writers.Add(stream.NewWriter(f))
	}

	runner := fx.NewRunner().HandleSignals()

	if replayFile != "" {
		f, err := os.Open(replayFile)
		if err != nil {
			log.Fatalln(err)
		}
		err = hub.Replay(runner.Context, stream.NewReader(f))
		f.Close()
		if err != nil {
			log.Fatalln(err)
		}
	}

	if listenAddr != "" {
		b := websocket.NewBroadcaster()
		b.Greeting = hub.Greeting
		hub.Writers.Add(b)
		mux := http.NewServeMux()
		mux.Handle("/events", b)
		server := &http.Server{Addr: listenAddr, Handler: mux}
		runner.Go(fx.NamedRun("http", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, server, server.ListenAndServe)
		})))
		glog.Infof("serving websocket at %s/events", listenAddr)
	}

	if conf.Events.MQTTURL != "" {
		q, err := mqtt.NewQueueFromURL(conf.Events.MQTTURL)
		if err != nil {
			log.Fatalln(err)
		}
		runner.Go(fx.NamedRun("mqtt", hub.Watch(q)))
	}

	if serialDev != "" {
		port, err := serial.OpenPort(&serial.Config{Name: serialDev, Baud: serialBaud})
		if err != nil {
			log.Fatalln(err)
		}
		reader := console.NewReader(port, conf.Radio.PayloadWidth, hub.ConsoleHandler(consoleUnit))
		runner.Go(fx.NamedRun("serial", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, port, func() error { return reader.Run(ctx) })
		})))
	}

	if len(runner.Runners) == 0 {
		log.Fatalln("nothing to monitor: set -mqtt, -serial or -listen")
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
