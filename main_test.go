package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsCommandWithoutSheet(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "")
	t.Setenv("GOOGLE_CREDENTIALS", "")
	t.Setenv("LOGLEVEL", "disabled")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"rows"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "0 neighborhoods")
}

func TestRootCommandHasRows(t *testing.T) {
	cmd, _, err := newRootCommand().Find([]string{"rows"})
	require.NoError(t, err)
	assert.Equal(t, "rows", cmd.Name())
}
