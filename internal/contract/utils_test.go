package contract

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBoolString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abcdefg...", TruncateText("abcdefghijklmnop", 10))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3), "tiny widths leave text untouched")
}

func TestGetColorStatus(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	assert.Equal(t, "Active", GetColorStatus(schema.ActiveStatus))
	assert.Equal(t, "Occasional", GetColorStatus(schema.OccasionalStatus))
	assert.Equal(t, "Dormant", GetColorStatus(schema.DormantStatus))
	assert.Equal(t, "failed", GetColorSyncStatus(schema.SyncFailed))
	assert.Equal(t, "idle", GetColorSyncStatus(schema.SyncIdle))
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	lvl, err = ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("visible", "repository", "ethereum/EIPs")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"repository":"ethereum/EIPs"`)

	buf.Reset()
	NewLogger(&buf, "debug", "text").Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}
