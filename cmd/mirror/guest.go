package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raheva/mirror/internal/config"
	"github.com/raheva/mirror/internal/db"
	"github.com/raheva/mirror/internal/guest"
	"github.com/raheva/mirror/internal/session"
)

func newGuestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Guest list utilities",
	}

	cmd.AddCommand(newGuestResolveCmd())
	return cmd
}

func newGuestResolveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "resolve <spoken name>",
		Short: "Run the guest matcher against the directory",
		Long:  "Resolves a spoken name exactly as the kiosk would, printing the match and which strategy found it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuestResolve(cmd, configPath, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mirror.yaml", "path to mirror config file")
	return cmd
}

func runGuestResolve(cmd *cobra.Command, configPath, spoken string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	dir, err := guest.NewGormDirectory(gormDB)
	if err != nil {
		return err
	}
	resolver, err := guest.NewResolver(dir)
	if err != nil {
		return err
	}

	match, err := resolver.Resolve(cmd.Context(), spoken)
	if err != nil {
		return err
	}
	if match == nil {
		fmt.Fprintln(out, session.SurpriseLine(spoken))
		return nil
	}
	fmt.Fprintf(out, "%s (strategy: %s)\n", session.GuestInfoLine(match), match.Strategy)
	return nil
}
