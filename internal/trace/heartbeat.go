package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a KindHeartbeat event every interval until stopped.
type Heartbeat struct {
	t        Tracer
	interval time.Duration
	probe    func() string
	quit     chan struct{}
	once     sync.Once
	done     sync.WaitGroup
}

// StartHeartbeat starts beating on t. probe, if non-nil, supplies the event
// detail on each beat. It returns nil when t is disabled or interval is not
// positive; Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration, probe func() string) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{t: t, interval: interval, probe: probe, quit: make(chan struct{})}
	h.done.Add(1)
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer h.done.Done()
	tick := time.NewTicker(h.interval)
	defer tick.Stop()

	for n := uint64(1); ; n++ {
		select {
		case <-h.quit:
			return
		case now := <-tick.C:
			detail := fmt.Sprintf("#%d", n)
			if h.probe != nil {
				detail += " " + h.probe()
			}
			h.t.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeKernel,
				Name:   "heartbeat",
				Detail: detail,
			})
		}
	}
}

// Stop ends the heartbeat and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.quit) })
	h.done.Wait()
}
