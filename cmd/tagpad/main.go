package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/tagpad/pkg/display"
	fx "github.com/robotalks/tagpad/pkg/framework"
	"github.com/robotalks/tagpad/pkg/hal"
	"github.com/robotalks/tagpad/pkg/hal/serialport"
	"github.com/robotalks/tagpad/pkg/hal/sim"
	"github.com/robotalks/tagpad/pkg/tagpad"
)

func init() {
	tagpad.SetupFlags()
}

func main() {
	flag.Parse()

	conf := tagpad.NewConfig()
	if err := conf.Validate(); err != nil {
		glog.Exitf("invalid config: %v", err)
	}
	tags, _ := conf.Tags()

	rfid := &sim.Rfid{}
	hw := tagpad.Hardware{
		// the button rests released
		Button: sim.NewPin(conf.ButtonActiveLow),
		Led:    &ledPin{Pin: sim.NewPin(false)},
		Tone:   sim.NewTone(1000),
		Display: &sim.Display{OnDraw: func(f *hal.Frame) {
			glog.Infof("display: frame drawn, %d pixels lit", (*display.Bitmap)(f).Lit())
		}},
		Rfid: rfid,
	}

	var aux []fx.Runnable
	if conf.SerialPath != "" {
		port, err := serialport.Open(conf.SerialPath, conf.Baud)
		if err != nil {
			glog.Exit(err)
		}
		hw.Serial, hw.RxLine, hw.TxEnable = port, port, port.TxEnable()
		aux = append(aux, port)
		if len(tags) > 0 {
			aux = append(aux, &tagFeeder{rfid: rfid, tags: tags})
		}
	} else {
		serial := sim.NewSerial()
		hw.Serial, hw.RxLine, hw.TxEnable = serial, serial, sim.NewPin(false)
		aux = append(aux, newSimHost(serial), &tagFeeder{rfid: rfid, tags: tags})
	}

	app := tagpad.NewApp(conf, hw).Add(aux...)
	if err := fx.NewRunner().HandleSignals().Go(app).Wait(); err != nil {
		glog.Exit(err)
	}
}

type ledPin struct {
	*sim.Pin
}

func (p *ledPin) SetHigh() {
	if !p.ReadLevel() {
		glog.Info("LED on")
	}
	p.Pin.SetHigh()
}

func (p *ledPin) SetLow() {
	if p.ReadLevel() {
		glog.Info("LED off")
	}
	p.Pin.SetLow()
}
