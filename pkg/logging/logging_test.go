package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		"default": {level: "", enabled: zapcore.InfoLevel},
		"debug":   {level: "debug", enabled: zapcore.DebugLevel},
		"warn":    {level: "warn", enabled: zapcore.WarnLevel},
		"bogus":   {level: "loud", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			logger, err := New(tc.level)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.enabled))
			assert.False(t, logger.Core().Enabled(tc.enabled-1))
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
