package machine

import (
	"context"
	"errors"
	"time"
)

// RunTimer raises IRQ0 every interval until ctx is done.
func (m *Machine) RunTimer(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("machine: timer interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.IRQ(IRQTimer)
		}
	}
}
