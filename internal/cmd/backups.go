package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Trigger, list and download backups",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return requireAuth()
	},
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest last",
	RunE: func(cmd *cobra.Command, _ []string) error {
		backups, err := a.api.ListBackups(cmd.Context())
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println(faintStyle.Render("No backups yet."))
			return nil
		}
		for _, b := range backups {
			fmt.Println(renderBackup(b))
		}
		return nil
	},
}

var backupScope string

var backupsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Trigger a backup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := a.api.RunBackup(cmd.Context(), domain.BackupScope(backupScope))
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Backup started."))
		fmt.Println(renderBackup(*b))
		return nil
	},
}

var backupOut string

var backupsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a completed backup artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := a.api.DownloadBackup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return saveBlob(blob, backupOut)
	},
}

func init() {
	backupsRunCmd.Flags().StringVar(&backupScope, "scope", "", "backup scope (defaults to full)")
	backupsDownloadCmd.Flags().StringVarP(&backupOut, "out", "o", "", "output path")

	backupsCmd.AddCommand(backupsListCmd, backupsRunCmd, backupsDownloadCmd)
}
