package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runList(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing entity type. Usage: deltasync list <type>")
	}
	entityType := args[0]

	changes, err := c.dataService.List(ctx, entityType)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	if len(changes) == 0 {
		c.io.Printf("No %s entities found.\n", entityType)
		return nil
	}

	c.io.Printf("Found %d %s entities:\n", len(changes), entityType)
	c.io.Println()
	for i, change := range changes {
		c.io.Printf("%d. %s (version %d)\n", i+1, change.EntityID, change.Version)
		for k, v := range change.Payload {
			c.io.Printf("   %s: %s\n", k, v)
		}
	}

	return nil
}
