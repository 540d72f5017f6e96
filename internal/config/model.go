package config

import (
	"fmt"
	"time"

	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/ladder"
	"github.com/vk/stladder/internal/translator"
)

// Model is the unified, format-agnostic representation of the settings.
type Model struct {
	Server    Server
	Layout    ladder.Layout
	Translate Translate
	// Rules replaces the built-in classification list when non-empty.
	Rules []RuleSpec
}

// Server holds the HTTP and socket.io listener settings.
type Server struct {
	Port             int
	CORSOrigins      []string
	MaxUploadBytes   int64
	TranslateTimeout time.Duration
}

// Translate holds the translation defaults.
type Translate struct {
	DefaultFamily  string
	UnwrapPrograms bool
}

// RuleSpec is the textual form of one classification rule.
type RuleSpec struct {
	Name     string
	Class    string
	Types    []string
	Keywords []string
	Patterns []string
}

// DefaultCORSOrigins are the development origins of the web frontend.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:5174",
	"http://localhost:5175",
}

// Defaults returns the settings used when no file overrides them.
func Defaults() *Model {
	return &Model{
		Server: Server{
			Port:             8000,
			CORSOrigins:      append([]string(nil), DefaultCORSOrigins...),
			MaxUploadBytes:   1 << 20,
			TranslateTimeout: 10 * time.Second,
		},
		Layout:    ladder.DefaultLayout(),
		Translate: Translate{DefaultFamily: translator.DefaultFamily},
	}
}

// DeviceRules compiles the configured rules, or returns the built-in list
// when none are configured.
func (m *Model) DeviceRules() (device.Rules, error) {
	if len(m.Rules) == 0 {
		return device.DefaultRules(), nil
	}
	rules := make(device.Rules, 0, len(m.Rules))
	for _, spec := range m.Rules {
		r, err := device.NewRule(spec.Name, spec.Class, spec.Types, spec.Keywords, spec.Patterns)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// TranslatorOptions returns the base options every translation starts from.
func (m *Model) TranslatorOptions() (translator.Options, error) {
	rules, err := m.DeviceRules()
	if err != nil {
		return translator.Options{}, fmt.Errorf("building classification rules: %w", err)
	}
	return translator.Options{
		TargetFamily:   m.Translate.DefaultFamily,
		Layout:         m.Layout,
		Classifier:     rules,
		UnwrapPrograms: m.Translate.UnwrapPrograms,
	}, nil
}
