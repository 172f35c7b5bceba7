package cmd

import (
	"github.com/spf13/cobra"

	"github.com/liweiyi88/pgbackup/runner"
)

var checkCmd = &cobra.Command{
	Use:          "check",
	Short:        "Verify required tools and directories without taking a backup",
	Args:         cobra.ExactArgs(0),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup()
		if err != nil {
			return err
		}

		defer cleanup()

		return runner.NewBackupRunner(cfg).CheckRequirements()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
