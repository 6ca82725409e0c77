package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and the first admin account",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("admin", "", "admin username (default from config)")
	initCmd.Flags().String("phone", "", "admin phone number for alerts (default from config)")
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if name, _ := cmd.Flags().GetString("admin"); name != "" {
		cfg.Admin.Username = name
	}
	if phone, _ := cmd.Flags().GetString("phone"); phone != "" {
		cfg.Admin.Phone = phone
	}

	exists, err := dbExists(cfg.Storage.Path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("database %s already exists", cfg.Storage.Path)
	}

	database, password, err := initDatabase(cmd.Context(), cfg.Storage.Path, cfg.Admin.Username, cfg.Admin.Phone)
	if err != nil {
		return err
	}
	defer database.Close()

	printInitResult(cmd.OutOrStdout(), cfg.Storage.Path, cfg.Admin.Username, cfg.Admin.Phone, password)
	return nil
}
