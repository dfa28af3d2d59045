package cli

import (
	"context"
	"fmt"
	"strings"
)

func (c *Cli) runPut(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing entity type. Usage: deltasync put <type> [id] [key=value ...]")
	}

	entityType := args[0]
	rest := args[1:]

	// Первый аргумент без '=' трактуется как entity id
	entityID := ""
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		entityID = rest[0]
		rest = rest[1:]
	}

	payload, err := parsePayload(rest)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return fmt.Errorf("no fields given. Usage: deltasync put <type> [id] key=value ...")
	}

	change, err := c.dataService.Put(ctx, entityType, entityID, payload)
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	c.io.Printf("%s %s/%s (version %d)\n", change.Operation, change.EntityType, change.EntityID, change.Version)
	c.io.Println("Change queued for synchronization.")

	return nil
}

// parsePayload разбирает аргументы вида key=value
func parsePayload(args []string) (map[string]string, error) {
	payload := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", arg)
		}
		payload[key] = value
	}
	return payload, nil
}
