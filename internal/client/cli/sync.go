package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/deltasync/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context) error {
	// Разовый запуск: перед циклом проверяем связь активно,
	// не дожидаясь фонового монитора
	c.monitor.Probe(ctx)

	result, err := c.orch.Sync(ctx)
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrOffline):
			return fmt.Errorf("server is unreachable, changes stay queued")
		case errors.Is(err, sync.ErrNotAuthenticated):
			return fmt.Errorf("not authenticated. Please run 'deltasync login' first")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	c.io.Println("Synchronization complete.")
	c.io.Printf("Pushed:  %d\n", result.Pushed)
	c.io.Printf("Pulled:  %d\n", result.Pulled)
	if result.ConflictsFound > 0 {
		c.io.Printf("Conflicts: %d found, %d auto-resolved\n", result.ConflictsFound, result.AutoResolved)
		if result.ConflictsFound > result.AutoResolved {
			c.io.Println("Run 'deltasync conflicts' to review the rest.")
		}
	}
	if result.Abandoned > 0 {
		c.io.Printf("Abandoned: %d operations exceeded the retry budget\n", result.Abandoned)
	}

	return nil
}
