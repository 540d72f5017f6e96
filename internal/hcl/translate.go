package hcl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/stladder/internal/config"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/ladder"
)

// translateServer overlays the attributes set in b onto s.
func (l *Loader) translateServer(b *serverBlock, s *config.Server) error {
	if b == nil {
		return nil
	}
	if b.Port != nil {
		if *b.Port < 1 || *b.Port > 65535 {
			return fmt.Errorf("server.port %d is out of range", *b.Port)
		}
		s.Port = *b.Port
	}
	if b.CORSOrigins != nil {
		s.CORSOrigins = *b.CORSOrigins
	}
	if b.MaxUploadBytes != nil {
		if *b.MaxUploadBytes <= 0 {
			return errors.New("server.max_upload_bytes must be positive")
		}
		s.MaxUploadBytes = *b.MaxUploadBytes
	}
	if b.TranslateTimeout != nil {
		d, err := time.ParseDuration(*b.TranslateTimeout)
		if err != nil {
			return fmt.Errorf("server.translate_timeout: %w", err)
		}
		if d <= 0 {
			return errors.New("server.translate_timeout must be positive")
		}
		s.TranslateTimeout = d
	}
	return nil
}

func (l *Loader) translateLayout(b *layoutBlock, lay *ladder.Layout) error {
	if b == nil {
		return nil
	}
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&lay.OriginX, b.OriginX)
	set(&lay.Spacing, b.Spacing)
	set(&lay.RowY, b.RowY)
	set(&lay.RowSpacing, b.RowSpacing)
	if lay.Spacing <= 0 || lay.RowSpacing <= 0 {
		return errors.New("layout.spacing and layout.row_spacing must be positive")
	}
	return nil
}

func (l *Loader) translateTranslate(b *translateBlock, t *config.Translate) {
	if b == nil {
		return
	}
	if b.DefaultFamily != nil && *b.DefaultFamily != "" {
		t.DefaultFamily = *b.DefaultFamily
	}
	if b.UnwrapPrograms != nil {
		t.UnwrapPrograms = *b.UnwrapPrograms
	}
}

// translateRule evaluates the list attributes of a rule block.
func (l *Loader) translateRule(ctx context.Context, conv *Converter, b *ruleBlock) (config.RuleSpec, error) {
	spec := config.RuleSpec{Name: b.Name, Class: b.Class}
	lists := []struct {
		name   string
		expr   hcl.Expression
		target *[]string
	}{
		{"types", b.Types, &spec.Types},
		{"keywords", b.Keywords, &spec.Keywords},
		{"patterns", b.Patterns, &spec.Patterns},
	}
	for _, attr := range lists {
		if err := conv.DecodeExpression(ctx, attr.expr, attr.target); err != nil {
			return spec, fmt.Errorf("rule %q: %s: %w", b.Name, attr.name, err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Translated rule.", "rule", b.Name, "class", b.Class, "keywords", len(spec.Keywords))
	return spec, nil
}
