package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raheva/mirror/internal/agent"
	"github.com/raheva/mirror/internal/capture"
	"github.com/raheva/mirror/internal/config"
	"github.com/raheva/mirror/internal/db"
	"github.com/raheva/mirror/internal/guest"
	"github.com/raheva/mirror/internal/hub"
	"github.com/raheva/mirror/internal/notify"
	"github.com/raheva/mirror/internal/reconcile"
	"github.com/raheva/mirror/internal/recording"
	"github.com/raheva/mirror/internal/server"
	"github.com/raheva/mirror/internal/session"
	"github.com/raheva/mirror/internal/storage"
)

// reconcileSpec sweeps stale recording rows every 30 minutes.
const reconcileSpec = "*/30 * * * *"

func newServeCmd() *cobra.Command {
	var (
		configPath     string
		port           int
		promptPassword bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mirror kiosk backend",
		Long:  "Connects to the database and capture backend, then serves the display and admin API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, promptPassword)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mirror.yaml", "path to mirror config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override the configured listen port")
	cmd.Flags().BoolVar(&promptPassword, "prompt-password", false, "prompt for the admin password instead of reading it from config")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, promptPassword bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if promptPassword {
		fmt.Fprint(out, "Admin password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		cfg.Server.AdminPassword = string(pw)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if err := db.SeedRelationTypes(gormDB); err != nil {
		return err
	}

	h := hub.New(cfg.Session.OriginalText)

	dir, err := guest.NewGormDirectory(gormDB)
	if err != nil {
		return err
	}
	resolver, err := guest.NewResolver(dir)
	if err != nil {
		return err
	}

	ledger, err := recording.NewGormLedger(recording.GormLedgerOpts{
		DB:      gormDB,
		BaseURL: storageBaseURL(cfg.Storage),
	})
	if err != nil {
		return err
	}

	notifier := buildNotifier(cfg.Notify)

	var store recording.ObjectStore
	if cfg.Storage.Endpoint != "" {
		s, err := storage.NewStore(cfg.Storage)
		if err != nil {
			return err
		}
		store = s
	}

	var recorder session.Recorder
	if cfg.LiveKit.URL != "" {
		capSvc, err := capture.NewService(cfg.LiveKit, cfg.Storage)
		if err != nil {
			return err
		}
		rc, err := recording.NewController(recording.ControllerOpts{
			Capture:  capSvc,
			Store:    store,
			Ledger:   ledger,
			Notifier: notifier,
			RoomID:   cfg.LiveKit.Room,
		})
		if err != nil {
			return err
		}
		recorder = rc
	} else {
		fmt.Fprintln(out, "LiveKit not configured, recording disabled")
		recorder = disabledRecorder{}
	}

	sess, err := session.NewController(session.Opts{
		WakePhrase:      cfg.Session.WakePhrase,
		CoupleNames:     cfg.Session.CoupleNames,
		WatchdogTimeout: time.Duration(cfg.Session.WatchdogTimeoutSeconds) * time.Second,
		Display:         h,
		Recorder:        recorder,
		Resolver:        resolver,
		Speech:          agent.NewClient(cfg.Agent.SpeakURL),
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Opts{
		Config:   *cfg,
		DB:       gormDB,
		Hub:      h,
		Session:  sess,
		Resolver: resolver,
		Ledger:   ledger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if store != nil {
		rec, err := reconcile.NewReconciler(gormDB, store)
		if err != nil {
			return err
		}
		cr := cron.New()
		if _, err := rec.Schedule(cr, reconcileSpec); err != nil {
			return err
		}
		cr.Start()
		defer cr.Stop()
	}

	// End any in-flight guest session before the process exits so the
	// recording is stopped cleanly.
	defer sess.Close(context.Background())

	fmt.Fprintf(out, "Mirror backend running at http://localhost:%d\n", cfg.Server.Port)
	return srv.Start(ctx)
}

// storageBaseURL derives the public URL prefix for recordings.
func storageBaseURL(cfg config.StorageConfig) string {
	if cfg.Endpoint == "" {
		return ""
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
}

// buildNotifier assembles the configured operator channels. Misconfigured
// channels are logged and skipped; notifications are never load-bearing.
func buildNotifier(cfg config.NotifyConfig) notify.Notifier {
	var channels notify.Multi
	if cfg.Discord.ChannelID != "" {
		d, err := notify.NewDiscord(notify.DiscordOpts{
			BotToken:  cfg.Discord.BotToken,
			ChannelID: cfg.Discord.ChannelID,
		})
		if err != nil {
			log.Printf("serve: discord notifier disabled: %v", err)
		} else {
			channels = append(channels, d)
		}
	}
	if cfg.Slack.ChannelID != "" {
		s, err := notify.NewSlack(notify.SlackOpts{
			BotToken:  cfg.Slack.BotToken,
			ChannelID: cfg.Slack.ChannelID,
		})
		if err != nil {
			log.Printf("serve: slack notifier disabled: %v", err)
		} else {
			channels = append(channels, s)
		}
	}
	if len(channels) == 0 {
		return nil
	}
	return channels
}

// disabledRecorder stands in when no capture backend is configured. Sessions
// run normally, they just leave no video behind.
type disabledRecorder struct{}

func (disabledRecorder) Start(ctx context.Context) *recording.Job { return nil }
func (disabledRecorder) Stop(ctx context.Context) bool            { return false }
func (disabledRecorder) TagGuest(ctx context.Context, name string) {}
