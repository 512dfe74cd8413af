package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalKeepsDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
database:
  path: /tmp/ledger.db
export:
  field_separator: ","
telemetry:
  posthog_key: phc_test
`)))

	cfg := NewDefault()
	require.NoError(t, v.Unmarshal(cfg))

	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	assert.Equal(t, ",", cfg.Export.FieldSeparator)
	assert.Equal(t, "dd/MM/yyyy", cfg.Export.DateFormat)
	assert.Equal(t, "USD", cfg.Defaults.Currency)
	assert.Equal(t, "phc_test", cfg.Telemetry.PosthogKey)
	assert.Equal(t, "info", cfg.Log.Level)
}
