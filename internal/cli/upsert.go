package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	upsertTable       string
	upsertKeyColumn   string
	upsertValueColumn string
)

var upsertCmd = &cobra.Command{
	Use:   "upsert KEY=VALUE...",
	Short: "Insert or replace key/value pairs in a two-column table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dict, err := parsePairs(args)
		if err != nil {
			return err
		}
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Adapter().Upsert(commandContext(cmd), upsertTable, upsertKeyColumn, upsertValueColumn, dict); err != nil {
			return err
		}
		cmd.Printf("%d entries written to %s\n", len(dict), upsertTable)
		return nil
	},
}

func parsePairs(args []string) (map[string]string, error) {
	dict := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q: expect KEY=VALUE", a)
		}
		dict[k] = v
	}
	return dict, nil
}

func init() {
	upsertCmd.Flags().StringVarP(&upsertTable, "table", "t", "", "target table")
	upsertCmd.Flags().StringVar(&upsertKeyColumn, "key-column", "key", "key column")
	upsertCmd.Flags().StringVar(&upsertValueColumn, "value-column", "value", "value column")
	_ = upsertCmd.MarkFlagRequired("table")
	rootCmd.AddCommand(upsertCmd)
}
