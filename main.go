package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chartdesk/internal/api"
	_ "chartdesk/internal/importer/sources"
	"chartdesk/internal/service"
	"chartdesk/internal/storage"
)

var (
	addr       string
	dbPath     string
	dataDir    string
	inboxDir   string
	inboxOwner string
	jwtSecret  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chartdesk",
		Short: "Headless chart builder over uploaded spreadsheets",
		Long: `chartdesk serves a small chart-builder API: users upload spreadsheet
files or import from databases, preview the rows, and save chart
configurations aggregated from the data.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	rootCmd.Flags().StringVar(&dbPath, "db", "chartdesk.db", "Path to the SQLite database file")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "data", "Directory for uploaded files")
	rootCmd.Flags().StringVar(&inboxDir, "inbox", "", "Directory to watch for dropped spreadsheet files")
	rootCmd.Flags().StringVar(&inboxOwner, "inbox-owner", "", "Email of the account that owns inbox imports")
	rootCmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "Secret for signing session tokens (or CHARTDESK_JWT_SECRET)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	secret := jwtSecret
	if secret == "" {
		secret = os.Getenv("CHARTDESK_JWT_SECRET")
	}
	if secret == "" {
		return errors.New("a JWT secret is required (--jwt-secret or CHARTDESK_JWT_SECRET)")
	}

	db, err := storage.New(dbPath, dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	users := storage.NewUserStore(db)
	datasetStore := storage.NewDatasetStore(db)
	chartStore := storage.NewChartStore(db)
	jobStore := storage.NewRefreshJobStore(db)

	auth := service.NewAuthService(users, []byte(secret))
	datasets := service.NewDatasetService(datasetStore, chartStore, jobStore, db.DataDir())
	charts := service.NewChartService(datasets, chartStore)
	refresh := service.NewRefreshService(jobStore, datasets, service.LogEmitter{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refresh.Start(ctx)
	if inboxDir != "" {
		if inboxOwner == "" {
			return errors.New("--inbox requires --inbox-owner")
		}
		owner, err := users.GetUserByEmail(inboxOwner)
		if err != nil {
			return errors.New("inbox owner account does not exist; register it first")
		}
		if err := refresh.WatchInbox(ctx, inboxDir, owner.ID); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:    addr,
		Handler: api.NewServer(auth, datasets, charts, refresh).Handler(),
	}

	go func() {
		<-ctx.Done()
		log.Println("shutting down")

		refresh.Stop()
		waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		refresh.WaitRunning(waitCtx)

		shutCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		server.Shutdown(shutCtx)
	}()

	log.Printf("chartdesk listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
