package cli

import (
	"context"
)

// runWatch запускает фоновую синхронизацию до отмены контекста (Ctrl+C).
// Статусные переходы печатаются по мере поступления.
func (c *Cli) runWatch(ctx context.Context) error {
	c.io.Println("Watching for changes. Press Ctrl+C to stop.")

	go c.monitor.Run(ctx)
	go c.orch.Run(ctx)

	statusC := c.orch.SubscribeStatus()
	for {
		select {
		case <-ctx.Done():
			c.io.Println()
			c.io.Println("Stopped.")
			return nil
		case status := <-statusC:
			c.io.Printf("[%s] items=%d", status.State, status.ItemsSynced)
			if status.LastError != "" {
				c.io.Printf(" error=%q", status.LastError)
			}
			c.io.Println()
		}
	}
}
