package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10, cfg.Iterations)
	assert.Equal(t, 1, cfg.Warmup)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid iteration bound",
			config:  &Config{Iterations: 5},
			wantErr: false,
		},
		{
			name:    "valid duration bound",
			config:  &Config{Duration: 5 * time.Second},
			wantErr: false,
		},
		{
			name:    "no bound at all",
			config:  &Config{},
			wantErr: true,
		},
		{
			name:    "negative rate",
			config:  &Config{Iterations: 5, Rate: -1},
			wantErr: true,
		},
		{
			name:    "negative warmup",
			config:  &Config{Iterations: 5, Warmup: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseThresholds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Thresholds
		wantErr  bool
	}{
		{
			name:  "p95 threshold",
			input: "p95<20ms",
			expected: Thresholds{
				P95: 20 * time.Millisecond,
			},
		},
		{
			name:  "mean threshold",
			input: "mean<10ms",
			expected: Thresholds{
				Mean: 10 * time.Millisecond,
			},
		},
		{
			name:  "multiple thresholds",
			input: "p95<20ms,mean<10ms",
			expected: Thresholds{
				P95:  20 * time.Millisecond,
				Mean: 10 * time.Millisecond,
			},
		},
		{
			name:  "with spaces and <=",
			input: "p50 <= 5ms, max < 1s",
			expected: Thresholds{
				P50: 5 * time.Millisecond,
				Max: time.Second,
			},
		},
		{
			name:    "invalid format",
			input:   "invalid",
			wantErr: true,
		},
		{
			name:    "unknown metric",
			input:   "rps>50",
			wantErr: true,
		},
		{
			name:    "wrong operator",
			input:   "p95>20ms",
			wantErr: true,
		},
		{
			name:    "invalid duration",
			input:   "p95<fast",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: Thresholds{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseThresholds(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestThresholdsHasThresholds(t *testing.T) {
	assert.False(t, (&Thresholds{}).HasThresholds())
	assert.True(t, (&Thresholds{P95: time.Millisecond}).HasThresholds())
	assert.True(t, (&Thresholds{Mean: time.Millisecond}).HasThresholds())
	assert.True(t, (&Thresholds{Max: time.Millisecond}).HasThresholds())
}
