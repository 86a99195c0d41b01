package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATA_FILE", "DATABASE_URL", "DUE_TERMS_DAYS", "TIMEZONE", "PAYMENT_METHODS",
		"HTTP_ADDR", "GOOGLE_SHEET_URL", "GOOGLE_SERVICE_ACCOUNT_KEY",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/oficina.yaml", cfg.DataFile)
	assert.False(t, cfg.UsesDatabase())
	assert.Equal(t, 30, cfg.DueTermsDays)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
	assert.Equal(t, DefaultPaymentMethods, cfg.PaymentMethods)
	assert.Equal(t, ":8080", cfg.HTTPAddr)

	lc := cfg.GetLoggerConfig()
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, "stderr", lc.Output)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/oficina")
	t.Setenv("DUE_TERMS_DAYS", "15")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("PAYMENT_METHODS", " Pix , Boleto,, ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UsesDatabase())
	assert.Equal(t, 15, cfg.DueTermsDays)
	assert.Equal(t, "UTC", cfg.Location().String())
	assert.Equal(t, []string{"Pix", "Boleto"}, cfg.PaymentMethods)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non-numeric terms", "DUE_TERMS_DAYS", "thirty"},
		{"negative terms", "DUE_TERMS_DAYS", "-1"},
		{"unknown zone", "TIMEZONE", "Mars/Olympus_Mons"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
