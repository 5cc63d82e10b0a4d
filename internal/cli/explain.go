package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain QUERY [ARG...]",
	Short: "Print the query plan of a statement",
	Long: `Print the query plan of a statement.

Each "?" placeholder in QUERY is replaced with the matching ARG, quoted as a
string literal, before the plan is requested.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		values := make([]any, 0, len(args)-1)
		for _, a := range args[1:] {
			values = append(values, a)
		}
		rows, err := db.Adapter().Explain(commandContext(cmd), args[0], values)
		if err != nil {
			return err
		}
		for _, row := range rows {
			cmd.Println(formatRow(row))
		}
		return nil
	},
}

// formatRow renders a plan row, preferring the detail column.
func formatRow(row map[string]any) string {
	if d, ok := row["detail"]; ok {
		return fmt.Sprint(d)
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(row)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, row[k]))
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
