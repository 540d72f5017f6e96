package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/stladder/internal/device"
)

// newEvalContext exposes the built-in keyword lists as the `defaults` object
// and a few list and string functions.
func newEvalContext() (*hcl.EvalContext, error) {
	inputs, err := gocty.ToCtyValue(device.InputKeywords, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("encoding input keywords: %w", err)
	}
	outputs, err := gocty.ToCtyValue(device.OutputKeywords, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("encoding output keywords: %w", err)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"input_keywords":  inputs,
				"output_keywords": outputs,
			}),
		},
		Functions: map[string]function.Function{
			"concat":   stdlib.ConcatFunc,
			"distinct": stdlib.DistinctFunc,
			"lower":    stdlib.LowerFunc,
			"upper":    stdlib.UpperFunc,
		},
	}, nil
}
