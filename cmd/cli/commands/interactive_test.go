package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "simple", line: "events --window next7days", want: []string{"events", "--window", "next7days"}},
		{name: "double quotes", line: `chat send 4 "see you there"`, want: []string{"chat", "send", "4", "see you there"}},
		{name: "single quotes", line: `feedback 4 --text 'it''s fine'`, want: []string{"feedback", "4", "--text", "its fine"}},
		{name: "extra spaces", line: "  dashboard   ", want: []string{"dashboard"}},
		{name: "empty", line: "", want: nil},
		{name: "unclosed quote", line: `chat send 4 "oops`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunInteractive_ResolvesSubcommandsAndResetsFlags(t *testing.T) {
	var gotArgs []string
	var gotStatus string
	var gotDays []string

	var status string
	var days []string
	leaf := &cobra.Command{
		Use:  "update",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gotArgs, gotStatus, gotDays = args, status, days
			return nil
		},
	}
	leaf.Flags().StringVar(&status, "status", "", "")
	leaf.Flags().StringSliceVar(&days, "days", nil, "")

	parent := &cobra.Command{Use: "tasks"}
	parent.AddCommand(leaf)

	require.NoError(t, runInteractive(parent, []string{"update", "7", "--status", "complete", "--days", "monday"}))
	assert.Equal(t, []string{"7"}, gotArgs)
	assert.Equal(t, "complete", gotStatus)
	assert.Equal(t, []string{"monday"}, gotDays)

	require.NoError(t, runInteractive(parent, []string{"update", "8"}))
	assert.Equal(t, []string{"8"}, gotArgs)
	assert.Empty(t, gotStatus)
	assert.Empty(t, gotDays)

	assert.Error(t, runInteractive(parent, []string{"update"}))
}
