package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualTimersFireInOrder(t *testing.T) {
	v := NewVirtual(0)
	var got []string

	v.SetTimer(30*time.Millisecond, func() { got = append(got, "b") })
	v.SetTimer(10*time.Millisecond, func() { got = append(got, "a") })
	v.SetTimer(30*time.Millisecond, func() { got = append(got, "c") })

	v.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)

	v.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 30*time.Millisecond, v.Elapsed())
}

func TestVirtualCancelTimer(t *testing.T) {
	v := NewVirtual(0)
	fired := false
	cancel := v.SetTimer(5*time.Millisecond, func() { fired = true })
	cancel()
	cancel()

	v.Advance(time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, v.PendingTimers())
}

func TestVirtualFrameNeverSynchronous(t *testing.T) {
	v := NewVirtual(16 * time.Millisecond)
	ran := 0
	v.RequestFrame(func() {
		ran++
		v.RequestFrame(func() { ran++ })
	})
	require.Equal(t, 0, ran)

	v.Frame()
	assert.Equal(t, 1, ran, "nested request waits for the next frame")
	assert.Equal(t, 16*time.Millisecond, v.Elapsed())

	v.Frame()
	assert.Equal(t, 2, ran)
	assert.Equal(t, 2, v.FramesRun())
}

func TestVirtualFrameFiresEarlierTimers(t *testing.T) {
	v := NewVirtual(16 * time.Millisecond)
	var got []string
	v.SetTimer(5*time.Millisecond, func() { got = append(got, "timer") })
	v.RequestFrame(func() { got = append(got, "frame") })

	v.Frame()
	assert.Equal(t, []string{"timer", "frame"}, got)
}

func TestVirtualAdvanceRunsFrames(t *testing.T) {
	v := NewVirtual(16 * time.Millisecond)
	var got []string
	v.RequestFrame(func() { got = append(got, "frame") })
	v.SetTimer(40*time.Millisecond, func() { got = append(got, "timer") })

	v.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"frame", "timer"}, got)
	assert.Equal(t, 100*time.Millisecond, v.Elapsed())
}

func TestVirtualFlush(t *testing.T) {
	v := NewVirtual(0)
	count := 0
	v.RequestFrame(func() {
		count++
		v.SetTimer(time.Second, func() { count++ })
	})

	v.Flush(10)
	assert.Equal(t, 2, count)
	assert.False(t, v.PendingFrames())
}
