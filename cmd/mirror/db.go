package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/raheva/mirror/internal/config"
	"github.com/raheva/mirror/internal/db"
	"github.com/raheva/mirror/internal/models"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	cmd.AddCommand(newDBSeedCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the mirror database",
		Long:  "Migrates all tables and seeds the built-in relation types.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mirror.yaml", "path to mirror config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := db.SeedRelationTypes(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Relation types seeded")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate all mirror tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to drop tables without --force")
			}
			return runDBReset(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mirror.yaml", "path to mirror config file")
	cmd.Flags().BoolVar(&force, "force", false, "confirm dropping all tables")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := gormDB.Migrator().DropTable(db.AllModels()...); err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if err := db.SeedRelationTypes(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Database reset")
	return nil
}

func newDBSeedCmd() *cobra.Command {
	var (
		configPath string
		guestFile  string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the guest list from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(cmd, configPath, guestFile)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mirror.yaml", "path to mirror config file")
	cmd.Flags().StringVarP(&guestFile, "file", "f", "guests.yaml", "path to the guest list YAML file")
	return cmd
}

type guestSeedFile struct {
	Guests []struct {
		FirstName   string `yaml:"first_name"`
		LastName    string `yaml:"last_name"`
		Phone       string `yaml:"phone"`
		TableNumber string `yaml:"table_number"`
		Relation    string `yaml:"relation"`
		Message     string `yaml:"message"`
		Story       string `yaml:"story"`
		About       string `yaml:"about"`
	} `yaml:"guests"`
}

func runDBSeed(cmd *cobra.Command, configPath, guestFile string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(guestFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", guestFile, err)
	}
	var file guestSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", guestFile, err)
	}
	if len(file.Guests) == 0 {
		return fmt.Errorf("%s contains no guests", guestFile)
	}

	guests := make([]models.Guest, 0, len(file.Guests))
	for _, g := range file.Guests {
		guests = append(guests, models.Guest{
			FirstName:   g.FirstName,
			LastName:    g.LastName,
			Phone:       g.Phone,
			TableNumber: g.TableNumber,
			Relation:    g.Relation,
			Message:     g.Message,
			Story:       g.Story,
			About:       g.About,
		})
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	inserted, err := db.SeedGuests(gormDB, guests)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d guest(s) (%d already present)\n", inserted, len(guests)-inserted)
	return nil
}
