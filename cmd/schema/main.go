package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"fieldbot/agent/internal/discovery"
	"fieldbot/agent/internal/route"
)

// Exports machine-readable JSON schemas for the persisted file formats so
// external tooling can validate hand-edited routes and discovery files.
func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	targets := []struct {
		file        string
		title       string
		description string
		value       any
	}{
		{
			file:        "route.schema.json",
			title:       "Fieldbot Route",
			description: "Validates a saved waypoint path file",
			value:       new(route.Path),
		},
		{
			file:        "resource_nodes.schema.json",
			title:       "Fieldbot Resource Nodes",
			description: "Validates the resource_nodes.json discovery file",
			value:       new([]discovery.ResourceNode),
		},
		{
			file:        "npcs.schema.json",
			title:       "Fieldbot NPCs",
			description: "Validates the npcs.json discovery file",
			value:       new([]discovery.NPC),
		},
		{
			file:        "mob_spawns.schema.json",
			title:       "Fieldbot Mob Spawns",
			description: "Validates the mob_spawns.json discovery file",
			value:       new([]discovery.MobSpawn),
		},
	}

	for _, target := range targets {
		schema := reflector.Reflect(target.value)
		schema.Title = target.title
		schema.Description = target.description

		if err := writeSchema(filepath.Join(outDir, target.file), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", target.file, err)
			os.Exit(1)
		}
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
