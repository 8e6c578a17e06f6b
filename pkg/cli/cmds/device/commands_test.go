package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tagpad/pkg/tone"
)

func TestParseNotes(t *testing.T) {
	notes, err := ParseNotes([]string{"440:10", "0:5:0", "65535:255:255"})
	require.NoError(t, err)
	require.Equal(t, []tone.Note{
		{Freq: 440, Len: 10, Volume: 128},
		{Freq: 0, Len: 5, Volume: 0},
		{Freq: 65535, Len: 255, Volume: 255},
	}, notes)

	for _, arg := range []string{"440", "440:10:1:2", "x:1", "65536:1", "440:256", "440:1:300"} {
		_, err := ParseNotes([]string{arg})
		require.Error(t, err, arg)
	}
}

func TestParseSwitch(t *testing.T) {
	for _, s := range []string{"on", "ON", "1", "true"} {
		on, err := ParseSwitch(s)
		require.NoError(t, err)
		require.True(t, on)
	}
	on, err := ParseSwitch("off")
	require.NoError(t, err)
	require.False(t, on)
	_, err = ParseSwitch("maybe")
	require.Error(t, err)
}
