package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var schemaVersionCmd = &cobra.Command{
	Use:   "schema-version",
	Short: "Print the stored schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		v, err := db.Adapter().SchemaVersion(commandContext(cmd))
		if err != nil {
			return err
		}
		cmd.Println(v)
		return nil
	},
}

var schemaVersionSetCmd = &cobra.Command{
	Use:   "set VERSION",
	Short: "Store the schema version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid schema version %q: %w", args[0], err)
		}
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Adapter().SetSchemaVersion(commandContext(cmd), int32(v)); err != nil {
			return err
		}
		cmd.Printf("schema version set to %d\n", v)
		return nil
	},
}

var foreignKeysCmd = &cobra.Command{
	Use:       "foreign-keys on|off",
	Short:     "Enable or disable foreign key enforcement for the session",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		ctx := commandContext(cmd)
		if args[0] == "on" {
			err = db.Adapter().EnableForeignKeys(ctx)
		} else {
			err = db.Adapter().DisableForeignKeys(ctx)
		}
		if err != nil {
			return err
		}
		cmd.Printf("foreign keys %s\n", args[0])
		return nil
	},
}

func init() {
	schemaVersionCmd.AddCommand(schemaVersionSetCmd)
	rootCmd.AddCommand(schemaVersionCmd)
	rootCmd.AddCommand(foreignKeysCmd)
}
