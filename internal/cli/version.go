package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tool and database engine versions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.Printf("picodb version %s\n", version)
		if filename == "" && configPath == "" {
			return nil
		}
		db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer db.Close()
		v, err := db.Adapter().DatabaseVersion(commandContext(cmd))
		if err != nil {
			return err
		}
		cmd.Printf("%s version %s\n", db.Dialect(), v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
