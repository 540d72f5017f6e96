package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/stladder/internal/config"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file found under paths, in order, and merges them
// over config.Defaults. Paths that do not exist are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.Collect(paths, ".hcl", true)
	if err != nil {
		return nil, fmt.Errorf("finding settings files: %w", err)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	evalCtx, err := newEvalContext()
	if err != nil {
		return nil, err
	}
	conv := NewConverter(evalCtx)
	model := config.Defaults()
	parser := hclparse.NewParser()
	ruleNames := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := l.translateServer(root.Server, &model.Server); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		if err := l.translateLayout(root.Layout, &model.Layout); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		l.translateTranslate(root.Translate, &model.Translate)

		for _, block := range root.Rules {
			if prev, dup := ruleNames[block.Name]; dup {
				return nil, fmt.Errorf("%s: rule %q already declared in %s", file, block.Name, prev)
			}
			ruleNames[block.Name] = file

			spec, err := l.translateRule(ctx, conv, block)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Rules = append(model.Rules, spec)
		}
	}

	// Compile once here so a bad class or pattern fails at load time.
	if _, err := model.DeviceRules(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"files", len(files),
		"port", model.Server.Port,
		"rules", len(model.Rules),
		"family", model.Translate.DefaultFamily,
	)
	return model, nil
}
