package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/playpark/internal/httperr"
)

func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"migrate", "sweep-expired", "consume-purchases", "publish-purchase"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSweepRejectsMalformedAsOf(t *testing.T) {
	_, err := executeCommand("sweep-expired", "--as-of", "10/03/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --as-of")
}

func TestCommandsRejectExtraArgs(t *testing.T) {
	tests := [][]string{
		{"migrate", "now"},
		{"sweep-expired", "today"},
		{"consume-purchases", "x"},
	}

	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			_, err := executeCommand(args...)
			assert.Error(t, err)
		})
	}
}

func TestPublishPurchaseValidatesBeforeDialing(t *testing.T) {
	_, err := executeCommand("publish-purchase", "--guardian", "1", "--location", "2", "--minutes", "60")
	assert.True(t, httperr.IsBusiness(err, "missing_transaction_id"), "got %v", err)

	_, err = executeCommand("publish-purchase", "--transaction-id", "tx-1", "--guardian", "1", "--location", "2", "--minutes", "0")
	assert.True(t, httperr.IsBusiness(err, "invalid_minutes"), "got %v", err)

	_, err = executeCommand("publish-purchase", "--transaction-id", "tx-1", "--guardian", "1", "--location", "2",
		"--minutes", "60", "--amount", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --amount")
}
