package app

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountRate(t *testing.T) {
	tests := []struct {
		rate    string
		want    string
		wantErr bool
	}{
		{rate: "0.10", want: "0.10"},
		{rate: "0", want: "0"},
		{rate: "0.999", want: "0.999"},
		{rate: "1", wantErr: true},
		{rate: "1.5", wantErr: true},
		{rate: "-0.1", wantErr: true},
		{rate: "ten percent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			cfg := &Config{Discount: DiscountConfig{Rate: tt.rate}}

			rate, err := cfg.DiscountRate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, rate.Equal(decimal.RequireFromString(tt.want)), "got %s", rate)
		})
	}
}

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg := &Config{Addr: "0.0.0.0:8080"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	// An explicit address wins over the platform port.
	cfg = &Config{Addr: "127.0.0.1:3000"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr)
}
