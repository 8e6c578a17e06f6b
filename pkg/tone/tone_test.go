package tone

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tagpad/pkg/hal/sim"
)

const clock = 8000000

func TestTimerParams(t *testing.T) {
	testCases := []struct {
		name  string
		clock uint32
		freq  uint16
		psc   uint16
		arr   uint16
	}{
		{"1Hz", clock, 1, 122, 65040},
		{"20Hz", clock, 20, 6, 57142},
		{"440Hz", clock, 440, 0, 18181},
		{"65535Hz", clock, 65535, 0, 122},
		{"fast clock 1Hz", 0xffffffff, 1, 0xffff, 0xffff},
		{"slow clock", 32768, 65535, 0, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			psc, arr := TimerParams(tc.clock, tc.freq)
			require.Equal(t, tc.psc, psc)
			require.Equal(t, tc.arr, arr)
			require.NotZero(t, arr)
		})
	}
}

func TestTimerParamsBounds(t *testing.T) {
	for _, c := range []uint32{1000000, 8000000, 72000000, 0xffffffff} {
		for f := 1; f <= 0xffff; f += 97 {
			psc, arr := TimerParams(c, uint16(f))
			ticks := uint64(c) / uint64(f)
			// the resulting period stays within one reload step of the target
			require.True(t, (uint64(psc)+1)*uint64(arr) <= ticks || arr == 1, "clock %d freq %d", c, f)
		}
	}
}

func TestPlaySequence(t *testing.T) {
	out := sim.NewTone(1000)
	s := NewSequencer(out, clock, 1)
	require.False(t, out.State().Enabled)

	require.True(t, s.Play(Note{Freq: 440, Len: 2, Volume: 128}))
	require.True(t, s.Play(Note{Freq: 0, Len: 1}))
	require.True(t, s.Play(Note{Freq: 880, Len: 1, Volume: 255}))

	s.Tick()
	st := out.State()
	require.True(t, st.Enabled)
	require.Equal(t, uint16(500), st.Duty)
	require.Equal(t, uint16(18181), st.Reload)
	require.Equal(t, 1, s.Remaining())

	s.Tick()
	require.True(t, out.State().Enabled)

	s.Tick()
	require.False(t, out.State().Enabled)

	s.Tick()
	st = out.State()
	require.True(t, st.Enabled)
	require.Equal(t, uint16(996), st.Duty)
	require.Equal(t, uint16(9090), st.Reload)

	s.Tick()
	require.False(t, out.State().Enabled)
	require.Zero(t, s.Pending())
}

func TestZeroLengthNoteTakesNoTime(t *testing.T) {
	out := sim.NewTone(1000)
	s := NewSequencer(out, clock, 1)
	s.Play(Note{Freq: 1000, Len: 0, Volume: 10})
	s.Play(Note{Freq: 0, Len: 0})
	s.Play(Note{Freq: 2000, Len: 1, Volume: 10})
	s.Tick()
	st := out.State()
	require.True(t, st.Enabled)
	require.Equal(t, uint16(4000), st.Reload)
	require.Zero(t, s.Pending())
}

func TestStopSilencesImmediately(t *testing.T) {
	out := sim.NewTone(1000)
	s := NewSequencer(out, clock, 1)
	s.Play(Note{Freq: 440, Len: 100, Volume: 100})
	s.Play(Note{Freq: 880, Len: 100, Volume: 100})
	s.Tick()
	s.Tick()
	require.True(t, out.State().Enabled)

	s.Stop()
	require.Zero(t, s.Remaining())
	require.Zero(t, s.Pending())
	s.Tick()
	require.False(t, out.State().Enabled)
}

func TestQueueOverflowDrops(t *testing.T) {
	s := NewSequencer(sim.NewTone(1000), clock, 1)
	for i := 0; i < QueueCapacity; i++ {
		require.True(t, s.Play(Note{Freq: 100, Len: 1}))
	}
	require.False(t, s.Play(Note{Freq: 100, Len: 1}))
	require.Equal(t, QueueCapacity, s.Pending())
}

func TestTicksPerUnit(t *testing.T) {
	out := sim.NewTone(1000)
	s := NewSequencer(out, clock, 2)
	s.Play(Note{Freq: 440, Len: 2, Volume: 1})
	for i := 0; i < 4; i++ {
		s.Tick()
		require.Truef(t, out.State().Enabled, "tick %d", i)
	}
	s.Tick()
	require.False(t, out.State().Enabled)
}
