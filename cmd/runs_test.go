package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/greenatlas/ecoserv/internal/runlog"
)

func TestFormatRunList(t *testing.T) {
	entries := []runlog.Entry{
		{
			Project:   "greenbelt",
			RunTitle:  "baseline",
			Model:     "climate",
			Duration:  1234 * time.Millisecond,
			CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			Project:   "greenbelt",
			RunTitle:  "baseline",
			Model:     "pollination",
			Duration:  2 * time.Second,
			CreatedAt: time.Date(2026, 3, 1, 9, 31, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRunList(&buf, entries)

	out := buf.String()
	assert.Contains(t, out, "PROJECT")
	assert.Contains(t, out, "climate")
	assert.Contains(t, out, "pollination")
	assert.Contains(t, out, "1.234s")
	assert.Contains(t, out, "2026-03-01 09:30")
}

func TestRunCommandRejectsUnknownModel(t *testing.T) {
	assert.NotNil(t, runCmd.Flags().Lookup("model"))
	assert.Equal(t, "all", runCmd.Flags().Lookup("model").DefValue)
}
