package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: deltasync delete <type> <id>")
	}

	if err := c.dataService.Delete(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	c.io.Printf("Deleted %s/%s. Change queued for synchronization.\n", args[0], args[1])
	return nil
}
