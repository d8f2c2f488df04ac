//go:build mage

package main

import (
	"context"
	"fmt"

	"github.com/pdiddy/parseyaml/internal/convert"
)

const (
	workflowPath = ".github/workflows/main.yml"
	workflowJSON = "parseyml.json"
)

// Convert writes the CI workflow at .github/workflows/main.yml as JSON to
// parseyml.json.
func Convert(ctx context.Context) error {
	res, err := convert.Convert(ctx, workflowPath, workflowJSON)
	if err != nil {
		return err
	}
	fmt.Printf("[convert] %s -> %s (%d bytes, sha256 %s)\n", res.InputPath, res.OutputPath, res.Bytes, res.SHA256[:12])
	return nil
}
