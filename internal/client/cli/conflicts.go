package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runConflicts(ctx context.Context) error {
	conflicts, err := c.orch.ListConflicts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list conflicts: %w", err)
	}

	if len(conflicts) == 0 {
		c.io.Println("No unresolved conflicts.")
		return nil
	}

	c.io.Printf("Found %d unresolved conflict(s):\n", len(conflicts))
	c.io.Println()

	for i, conflict := range conflicts {
		c.io.Printf("%d. [%s] %s %s/%s\n",
			i+1, conflict.Severity, conflict.Type, conflict.EntityType, conflict.EntityID)
		c.io.Printf("   ID:       %s\n", conflict.ID)
		c.io.Printf("   Detected: %s\n", time.Unix(conflict.DetectedAt, 0).Format(time.RFC3339))
		c.io.Printf("   Local:    %s v%d at %s\n",
			conflict.Local.Operation, conflict.Local.Version,
			time.Unix(conflict.Local.Timestamp, 0).Format(time.RFC3339))
		c.io.Printf("   Remote:   %s v%d at %s\n",
			conflict.Remote.Operation, conflict.Remote.Version,
			time.Unix(conflict.Remote.Timestamp, 0).Format(time.RFC3339))
		c.io.Println()
	}

	c.io.Println("Resolve with: deltasync resolve <id> <keep_local|keep_remote|last_write_wins|merge>")

	return nil
}
