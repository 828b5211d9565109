package termkeys

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRepeatAndRelease(t *testing.T) {
	tr := NewTracker(100 * time.Millisecond)
	t0 := time.Unix(0, 0)

	ev := tr.Press("a", t0)
	assert.Equal(t, Event{Kind: KeyDown, Key: "a"}, ev)

	ev = tr.Press("a", t0.Add(50*time.Millisecond))
	assert.True(t, ev.Repeat)

	assert.Empty(t, tr.Expire(t0.Add(120*time.Millisecond)))

	ups := tr.Expire(t0.Add(150 * time.Millisecond))
	require.Len(t, ups, 1)
	assert.Equal(t, Event{Kind: KeyUp, Key: "a"}, ups[0])
	assert.False(t, tr.Held("a"))

	ev = tr.Press("a", t0.Add(200*time.Millisecond))
	assert.False(t, ev.Repeat)
}

func TestTrackerReleaseAllIsSorted(t *testing.T) {
	tr := NewTracker(0)
	now := time.Now()
	tr.Press("s", now)
	tr.Press("a", now)
	tr.Press("d", now)

	ups := tr.ReleaseAll()
	require.Len(t, ups, 3)
	assert.Equal(t, "a", ups[0].Key)
	assert.Equal(t, "d", ups[1].Key)
	assert.Equal(t, "s", ups[2].Key)
}

func collect(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-r.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("reader did not finish")
		}
	}
}

func TestReaderQuitOnEOF(t *testing.T) {
	r := newReader(strings.NewReader("aA"), time.Hour)
	r.Start()

	evs := collect(t, r)
	require.Len(t, evs, 4)
	assert.Equal(t, Event{Kind: KeyDown, Key: "a"}, evs[0])
	assert.Equal(t, Event{Kind: KeyDown, Key: "a", Repeat: true}, evs[1])
	assert.Equal(t, Event{Kind: KeyUp, Key: "a"}, evs[2])
	assert.Equal(t, Quit, evs[3].Kind)
	require.NoError(t, r.Stop())
}

func TestReaderCtrlCQuits(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	r := newReader(pr, time.Hour)
	r.Start()

	go func() { _, _ = pw.Write([]byte{'k', ctrlC}) }()

	evs := collect(t, r)
	require.Len(t, evs, 3)
	assert.Equal(t, "k", evs[0].Key)
	assert.Equal(t, KeyUp, evs[1].Kind)
	assert.Equal(t, Quit, evs[2].Kind)
	require.NoError(t, r.Stop())
}
