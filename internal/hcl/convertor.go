package hcl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/stladder/internal/ctxlog"
)

// Converter evaluates HCL expressions into Go values.
type Converter struct {
	evalCtx *hcl.EvalContext
}

// NewConverter creates a converter that evaluates against evalCtx.
func NewConverter(evalCtx *hcl.EvalContext) *Converter {
	return &Converter{evalCtx: evalCtx}
}

// DecodeExpression evaluates expr and stores the result in target, which
// must be a non-nil pointer. A null result, including an absent optional
// attribute, leaves target untouched.
func (c *Converter) DecodeExpression(ctx context.Context, expr hcl.Expression, target any) error {
	if expr == nil {
		return nil
	}
	val, diags := expr.Value(c.evalCtx)
	if diags.HasErrors() {
		return diags
	}
	if val.IsNull() {
		return nil
	}
	return c.decode(ctx, val, target)
}

// decode coerces val to the cty type implied by the pointed-to Go value and
// stores it. Targets without an implied type (e.g. interfaces) get val as is.
func (c *Converter) decode(ctx context.Context, val cty.Value, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}

	want, err := gocty.ImpliedType(ptr.Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, target)
	}
	if val.Type().Equals(want) {
		return gocty.FromCtyValue(val, target)
	}

	coerced, err := convert.Convert(val, want)
	if err != nil {
		return fmt.Errorf("expected %s, got %s: %w", want.FriendlyName(), val.Type().FriendlyName(), err)
	}
	ctxlog.FromContext(ctx).Debug("Coerced setting value.", "from", val.Type().FriendlyName(), "to", want.FriendlyName())
	return gocty.FromCtyValue(coerced, target)
}
