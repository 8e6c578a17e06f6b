package comm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tagpad/pkg/hal"
	"github.com/robotalks/tagpad/pkg/tone"
)

func TestDecodeCommand(t *testing.T) {
	display := make([]byte, 1+hal.FrameSize)
	display[0] = 'D'
	tests := []struct {
		frame string
		cmd   Command
	}{
		{"P", Ping{}},
		{"R", Reset{}},
		{"L\x00", Led{On: false}},
		{"L\x01", Led{On: true}},
		{"L\x07", Led{On: true}},
		{"B", Beep{Notes: Notes{}}},
		{string(display), Display{Data: display[1:]}},
	}
	for _, test := range tests {
		cmd, err := DecodeCommand([]byte(test.frame))
		require.NoError(t, err, "frame %q", test.frame[:1])
		require.Equal(t, test.cmd, cmd)
	}
}

func TestDecodeCommandMalformed(t *testing.T) {
	for _, frame := range []string{
		"",
		"X",
		"p",
		"Px",
		"R\x00",
		"L",
		"L\x01\x01",
		"D" + string(make([]byte, 1023)),
		"D" + string(make([]byte, 1025)),
	} {
		cmd, err := DecodeCommand([]byte(frame))
		require.Nil(t, cmd)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrMalformed))
		var merr *MalformedError
		require.True(t, errors.As(err, &merr))
		require.Equal(t, len(frame), merr.Length)
	}
}

func TestBeepNotes(t *testing.T) {
	frame := []byte{'B',
		0xb8, 0x01, 10, 128,
		0x00, 0x00, 5, 0,
		0x01, 0x02, 3,
	}
	cmd, err := DecodeCommand(frame)
	require.NoError(t, err)
	notes := cmd.(Beep).Notes
	require.Equal(t, 2, notes.Len())
	var got []tone.Note
	notes.Each(func(n tone.Note) { got = append(got, n) })
	require.Equal(t, []tone.Note{
		{Freq: 440, Len: 10, Volume: 128},
		{Freq: 0, Len: 5, Volume: 0},
	}, got)
}

func TestPackNotes(t *testing.T) {
	notes := PackNotes(tone.Note{Freq: 0x0a5c, Len: 1, Volume: 2})
	require.Equal(t, Notes{0x5c, 0x0a, 1, 2}, notes)
	encoded := AppendCommand(nil, Beep{Notes: notes})
	require.Equal(t, []byte{'B', 0x5c, 0x5c, 0x5c, 'n', 1, 2, '\n'}, encoded)

	var d Decoder
	frames := feedAll(&d, encoded)
	require.Len(t, frames, 1)
	cmd, err := DecodeCommand(frames[0])
	require.NoError(t, err)
	require.Equal(t, tone.Note{Freq: 0x0a5c, Len: 1, Volume: 2}, cmd.(Beep).Notes.At(0))
}

func TestAppendCommand(t *testing.T) {
	require.Equal(t, "P\n", string(AppendCommand(nil, Ping{})))
	require.Equal(t, "R\n", string(AppendCommand(nil, Reset{})))
	require.Equal(t, "L\x01\n", string(AppendCommand(nil, Led{On: true})))
	require.Equal(t, "L\x00\n", string(AppendCommand(nil, Led{})))
}
