package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/ladder"
)

func TestDefaults(t *testing.T) {
	m := Defaults()

	assert.Equal(t, 8000, m.Server.Port)
	assert.Equal(t, DefaultCORSOrigins, m.Server.CORSOrigins)
	assert.Equal(t, ladder.DefaultLayout(), m.Layout)
	assert.Equal(t, "mitsubishi", m.Translate.DefaultFamily)

	m.Server.CORSOrigins[0] = "changed"
	assert.NotEqual(t, "changed", DefaultCORSOrigins[0])
}

func TestModel_DeviceRules(t *testing.T) {
	t.Run("built-in list without rules", func(t *testing.T) {
		rules, err := Defaults().DeviceRules()
		require.NoError(t, err)
		assert.Len(t, rules, len(device.DefaultRules()))
	})

	t.Run("configured rules replace the list", func(t *testing.T) {
		m := Defaults()
		m.Rules = []RuleSpec{
			{Name: "pumps", Class: "output", Keywords: []string{"pump"}},
			{Name: "rest", Class: "internal"},
		}

		opts, err := m.TranslatorOptions()

		require.NoError(t, err)
		assert.Equal(t, device.Output, opts.Classifier.Classify("Pump1", "BOOL", device.AsTarget))
		assert.Equal(t, device.Internal, opts.Classifier.Classify("Motor", "BOOL", device.AsTarget))
	})

	t.Run("bad class", func(t *testing.T) {
		m := Defaults()
		m.Rules = []RuleSpec{{Name: "x", Class: "relay"}}

		_, err := m.TranslatorOptions()

		require.Error(t, err)
		assert.Contains(t, err.Error(), `rule "x"`)
	})
}
