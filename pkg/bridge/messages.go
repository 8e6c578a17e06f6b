package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/tagpad/pkg/hal"
	"github.com/robotalks/tagpad/pkg/l0/comm"
	"github.com/robotalks/tagpad/pkg/tone"
)

// Topics relative to the device ID.
const (
	TopicButton  = "event/button"
	TopicRfid    = "event/rfid"
	TopicLed     = "cmd/led"
	TopicBeep    = "cmd/beep"
	TopicDisplay = "cmd/display"
	TopicReset   = "cmd/reset"
)

// EventMsg is the JSON form of a device event.
type EventMsg struct {
	Device  string    `json:"device"`
	Type    string    `json:"type"`
	Pressed *bool     `json:"pressed,omitempty"`
	UID     string    `json:"uid,omitempty"`
	Time    time.Time `json:"time"`
}

// LedMsg is the payload of cmd/led.
type LedMsg struct {
	On bool `json:"on"`
}

// NoteMsg is one note of cmd/beep.
type NoteMsg struct {
	Freq   uint16 `json:"freq"`
	Len    uint8  `json:"len"`
	Volume uint8  `json:"volume"`
}

// BeepMsg is the payload of cmd/beep.
type BeepMsg struct {
	Notes []NoteMsg `json:"notes"`
}

// eventMsg converts ev, returning the topic. Pong has no message.
func eventMsg(device string, ev comm.Event, at time.Time) (string, *EventMsg) {
	msg := &EventMsg{Device: device, Time: at}
	switch e := ev.(type) {
	case comm.Button:
		pressed := e.Pressed
		msg.Type, msg.Pressed = "button", &pressed
		return TopicButton, msg
	case comm.Rfid:
		msg.Type, msg.UID = "rfid", e.UID.String()
		return TopicRfid, msg
	}
	return "", nil
}

// decodeCommand converts a message received on a command topic.
func decodeCommand(topic string, payload []byte) (comm.Command, error) {
	switch topic {
	case TopicReset:
		return comm.Reset{}, nil
	case TopicLed:
		var msg LedMsg
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, err
		}
		return comm.Led{On: msg.On}, nil
	case TopicBeep:
		var msg BeepMsg
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, err
		}
		if len(msg.Notes) > tone.QueueCapacity {
			return nil, fmt.Errorf("too many notes: %d", len(msg.Notes))
		}
		notes := make([]tone.Note, len(msg.Notes))
		for i, n := range msg.Notes {
			notes[i] = tone.Note{Freq: n.Freq, Len: n.Len, Volume: n.Volume}
		}
		return comm.Beep{Notes: comm.PackNotes(notes...)}, nil
	case TopicDisplay:
		if len(payload) != hal.FrameSize {
			return nil, fmt.Errorf("display payload of %d bytes, want %d", len(payload), hal.FrameSize)
		}
		return comm.Display{Data: append([]byte(nil), payload...)}, nil
	}
	return nil, fmt.Errorf("unknown command topic %q", topic)
}

// Payload formats.
const (
	FormatJSON  = "json"
	FormatProto = "proto"
)

// EventProto is the protobuf form of a device event.
type EventProto struct {
	Device       string `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	Type         string `protobuf:"bytes,2,opt,name=type,proto3" json:"type,omitempty"`
	Pressed      bool   `protobuf:"varint,3,opt,name=pressed,proto3" json:"pressed,omitempty"`
	UID          []byte `protobuf:"bytes,4,opt,name=uid,proto3" json:"uid,omitempty"`
	TimeUnixNano int64  `protobuf:"varint,5,opt,name=time_unix_nano,proto3" json:"time_unix_nano,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *EventProto) ProtoMessage() {}

// Reset implements proto.Message.
func (m *EventProto) Reset() { *m = EventProto{} }

// String implements proto.Message.
func (m *EventProto) String() string { return proto.CompactTextString(m) }

func encodeEvent(format string, msg *EventMsg, ev comm.Event) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		return json.Marshal(msg)
	case FormatProto:
		pb := &EventProto{
			Device:       msg.Device,
			Type:         msg.Type,
			TimeUnixNano: msg.Time.UnixNano(),
		}
		switch e := ev.(type) {
		case comm.Button:
			pb.Pressed = e.Pressed
		case comm.Rfid:
			pb.UID = e.UID.Bytes()
		}
		return proto.Marshal(pb)
	}
	return nil, fmt.Errorf("unknown payload format %q", format)
}
