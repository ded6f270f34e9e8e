package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "waybill version dev\n", execute(t, "version"))
}

func TestToolsCommand(t *testing.T) {
	out := execute(t, "tools", "--profile", "shipment")
	for _, name := range []string{"track_shipment", "check_reschedule_availability", "get_reschedule_dates", "confirm_reschedule"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "tracking_number (string, required)")

	out = execute(t, "tools", "--profile", "research")
	assert.Contains(t, out, "wikipedia")
	assert.Contains(t, out, "save_text_to_file")
}

func TestProfileTools_Unknown(t *testing.T) {
	_, err := profileTools("weather")
	assert.ErrorContains(t, err, "weather")
}
