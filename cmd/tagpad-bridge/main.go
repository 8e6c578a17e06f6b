package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/tagpad/pkg/bridge"
	fx "github.com/robotalks/tagpad/pkg/framework"
	"github.com/robotalks/tagpad/pkg/hal/serialport"
	"github.com/robotalks/tagpad/pkg/l0/comm"
	"github.com/robotalks/tagpad/pkg/tagpad"
)

var serialPath = tagpad.Default().SerialPath

func init() {
	bridge.SetupFlags()
	flag.StringVar(&serialPath, "serial", serialPath, "Serial device of the appliance")
}

func main() {
	flag.Parse()

	conf := bridge.NewConfig()
	if err := conf.Validate(); err != nil {
		glog.Exitf("invalid config: %v", err)
	}
	if serialPath == "" {
		glog.Exit("serial device expected")
	}
	port, err := serialport.OpenHost(serialPath, tagpad.Default().Baud)
	if err != nil {
		glog.Exit(err)
	}
	client := comm.NewClient(port)
	client.Timeout = conf.Timeout

	var pubsub bridge.PubSub
	if conf.MQTTBrokerURL != "" {
		q, err := bridge.NewQueueFromURL(conf.MQTTBrokerURL)
		if err != nil {
			glog.Exitf("MQTT broker %q: %v", conf.MQTTBrokerURL, err)
		}
		if err = q.Connect(); err != nil {
			glog.Exitf("MQTT connect: %v", err)
		}
		defer q.Close()
		pubsub = q
	}

	runners := []fx.Runnable{client}
	var hub *bridge.Hub
	if conf.Listen != "" {
		hub = bridge.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/events", hub.Handler())
		server := &http.Server{Addr: conf.Listen, Handler: mux}
		runners = append(runners, fx.NamedRun("http", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, server, server.ListenAndServe)
		})))
	}

	b := bridge.New(conf.ID, client, pubsub, hub)
	b.PollInterval = conf.PollInterval
	b.Format = conf.Format
	runners = append(runners, b)

	glog.Infof("bridging %s as %s", serialPath, conf.ID)
	ctx := fx.NewRunner().HandleSignals().Context
	if err := fx.NewScheduler().Add(runners...).Run(ctx); err != nil {
		glog.Exit(err)
	}
}
