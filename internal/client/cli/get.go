package cli

import (
	"context"
	"fmt"
	"sort"
	"time"
)

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: deltasync get <type> <id>")
	}

	change, err := c.dataService.Get(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}

	c.io.Printf("Entity:  %s/%s\n", change.EntityType, change.EntityID)
	c.io.Printf("Version: %d\n", change.Version)
	c.io.Printf("Updated: %s\n", time.Unix(change.Timestamp, 0).Format(time.RFC3339))
	c.io.Println()

	keys := make([]string, 0, len(change.Payload))
	for k := range change.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.io.Printf("  %s: %s\n", k, change.Payload[k])
	}

	return nil
}
