package phase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBusDeliversInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(tr Transition) { got = append(got, "first:"+tr.To.String()) })
	b.Subscribe(func(tr Transition) { got = append(got, "second:"+tr.To.String()) })

	b.Publish(Transition{From: TaxiOut, To: TakeoffRoll})

	require.Equal(t, []string{"first:takeoff_roll", "second:takeoff_roll"}, got)
}

func TestBusIsolatesPanickingSubscriber(t *testing.T) {
	b := NewBus()
	var delivered bool
	b.Subscribe(func(Transition) { panic("boom") })
	b.Subscribe(func(Transition) { delivered = true })

	require.NotPanics(t, func() {
		b.Publish(Transition{From: Climb, To: Cruise})
	})
	require.True(t, delivered)
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := &History{}
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < historyCap+10; i++ {
		h.Append(Transition{To: Cruise, At: base.Add(time.Duration(i) * time.Second)})
	}

	all := h.All()
	require.Len(t, all, historyCap)
	require.Equal(t, historyCap, h.Len())
	// The first ten entries were evicted.
	require.Equal(t, base.Add(10*time.Second), all[0].At)
}
