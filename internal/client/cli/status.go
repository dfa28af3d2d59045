package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/deltasync/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	isAuth, err := c.authService.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}
	if !isAuth {
		c.io.Println("Session: not authenticated")
		c.io.Println()
		c.io.Println("Run 'deltasync login' to authenticate.")
		return nil
	}
	c.io.Println("Session: authenticated")

	status := c.orch.Status()
	c.io.Printf("Sync state: %s\n", status.State)
	if status.State == models.StateError && status.LastError != "" {
		c.io.Printf("Last error: %s (retry in %s)\n", status.LastError, status.RetryAfter)
	}
	if status.LastSyncAt > 0 {
		c.io.Printf("Last sync:  %s (%d items)\n",
			time.Unix(status.LastSyncAt, 0).Format(time.RFC3339), status.ItemsSynced)
	}

	pending, err := c.queue.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending operations: %w", err)
	}
	unresolved, err := c.conflicts.CountUnresolved(ctx)
	if err != nil {
		return fmt.Errorf("failed to count conflicts: %w", err)
	}

	c.io.Println()
	if pending > 0 {
		c.io.Printf("Pending operations: %d (run 'deltasync sync')\n", pending)
	} else {
		c.io.Println("All local changes synchronized.")
	}
	if unresolved > 0 {
		c.io.Printf("Unresolved conflicts: %d (run 'deltasync conflicts')\n", unresolved)
	}

	return nil
}
