package main

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/tagpad/pkg/hal"
	"github.com/robotalks/tagpad/pkg/hal/sim"
	"github.com/robotalks/tagpad/pkg/l0/comm"
	"github.com/robotalks/tagpad/pkg/tone"
)

const (
	hostPollInterval = 50 * time.Millisecond
	tagInterval      = 2 * time.Second
)

// simHost plays the host controller on a simulated link: it pings
// regularly and answers a tag read with a beep.
type simHost struct {
	client *comm.Client
}

func newSimHost(serial *sim.Serial) *simHost {
	return &simHost{client: comm.NewClient(serial.Host())}
}

func (h *simHost) Name() string {
	return "sim-host"
}

func (h *simHost) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- h.client.Run(ctx) }()
	ticker := time.NewTicker(hostPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return <-errCh
		case err := <-errCh:
			return err
		case <-ticker.C:
		}
		ev, err := h.client.Do(ctx, comm.Ping{})
		if err != nil {
			glog.Warningf("sim-host: %v", err)
			continue
		}
		switch e := ev.(type) {
		case comm.Button:
			glog.Infof("sim-host: button pressed=%v", e.Pressed)
		case comm.Rfid:
			glog.Infof("sim-host: tag %s", e.UID)
			beep := comm.Beep{Notes: comm.PackNotes(
				tone.Note{Freq: 1760, Len: 5, Volume: 96},
				tone.Note{Freq: 0, Len: 2},
				tone.Note{Freq: 2093, Len: 10, Volume: 96},
			)}
			if _, err = h.client.Do(ctx, beep); err != nil {
				glog.Warningf("sim-host: beep: %v", err)
			}
		}
	}
}

// tagFeeder presents the configured tags to the simulated reader in turn.
type tagFeeder struct {
	rfid *sim.Rfid
	tags []hal.UID
}

func (f *tagFeeder) Name() string {
	return "sim-tags"
}

func (f *tagFeeder) Run(ctx context.Context) error {
	if len(f.tags) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(tagInterval)
	defer ticker.Stop()
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.rfid.Present(f.tags[n%len(f.tags)])
		}
	}
}
