// Command vaultschema emits JSON schemas for the vault's authored files so
// editors can validate manifest.yaml and note front matter.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"cogcanvas/internal/vault"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the schemas into")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "-out is required")
		os.Exit(1)
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	manifest := reflector.Reflect(new(vault.Manifest))
	manifest.Title = "Vault Manifest"
	manifest.Description = "Validates manifest.yaml at the vault root"

	front := reflector.Reflect(new(vault.FrontMatter))
	front.Title = "Note Front Matter"
	front.Description = "Validates the YAML front matter block of a vault note"

	for name, schema := range map[string]*jsonschema.Schema{
		"manifest.schema.json":     manifest,
		"front-matter.schema.json": front,
	} {
		if err := writeSchema(filepath.Join(outDir, name), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", name, err)
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
