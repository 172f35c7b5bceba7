package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/liweiyi88/pgbackup/runner"
)

var pruneCmd = &cobra.Command{
	Use:          "prune",
	Short:        "Apply the retention policy to the target directory without taking a backup",
	Args:         cobra.ExactArgs(0),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup()
		if err != nil {
			return err
		}

		defer cleanup()

		removed, err := runner.NewBackupRunner(cfg).Prune()
		for _, name := range removed {
			slog.Info("old archive pruned", slog.Any("file", name))
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
