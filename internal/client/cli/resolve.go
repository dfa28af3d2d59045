package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/deltasync/internal/models"
)

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: deltasync resolve <conflict-id> <strategy>")
	}

	id := args[0]
	strategy := models.ResolutionStrategy(args[1])

	if err := c.orch.ResolveConflict(ctx, id, strategy); err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	c.io.Printf("Conflict %s resolved with %s. Result queued for synchronization.\n", id, strategy)
	return nil
}
