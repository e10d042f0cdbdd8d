package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/richard-senior/rfef/internal/app"
	"github.com/richard-senior/rfef/internal/config"
	"github.com/richard-senior/rfef/internal/logger"
	"github.com/richard-senior/rfef/pkg/store"
	"github.com/richard-senior/rfef/pkg/updater"
)

const usage = `usage: rfef [command]

commands:
  serve                     run the HTTP API and the results scheduler (default)
  update-results [round]    fetch official results once and exit
  load-historical <file>    replace the historical matches with a {"matches": [...]} file
  convert-official [--all]  replace the historical matches with this season's official results`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(2)
	}
	logger.SetShowDateTime(true)
	logger.SetLevel(cfg.LogLevel)
	if err := logger.SetLogOutput(cfg.LogOutput); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	logger.Info("Starting rfef", cmd)

	a, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Error("Startup failed", err)
		os.Exit(1)
	}
	defer a.Close()

	switch cmd {
	case "serve":
		err = serve(ctx, a)
	case "update-results":
		err = updateResults(ctx, a, args)
	case "load-historical":
		err = loadHistorical(ctx, a, args)
	case "convert-official":
		err = convertOfficial(ctx, a, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintln(os.Stderr, usage)
		a.Close()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", err)
		a.Close()
		os.Exit(1)
	}
}

func serve(ctx context.Context, a *app.App) error {
	go updater.NewScheduler(a.Updater, a.Config.UpdateInterval).Start(ctx)

	srv := &http.Server{
		Addr:              a.Config.ListenAddr,
		Handler:           a.API.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on", a.Config.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func updateResults(ctx context.Context, a *app.App, args []string) error {
	round := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid round %q", args[0])
		}
		round = n
	}
	report, err := a.Updater.Run(ctx, round)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func loadHistorical(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("load-historical needs exactly one file")
	}
	matches, err := store.NewFileHistoricalStore(args[0]).Load(ctx)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no matches found in %s", args[0])
	}
	if err := a.Service.ReplaceHistorical(ctx, matches); err != nil {
		return err
	}
	logger.Highlight(fmt.Sprintf("Loaded %d historical matches", len(matches)))
	return nil
}

func convertOfficial(ctx context.Context, a *app.App, args []string) error {
	includeAll := len(args) > 0 && args[0] == "--all"
	matches, err := a.Service.ConvertOfficialToHistorical(ctx, nil, includeAll, time.Now())
	if err != nil {
		return err
	}
	logger.Highlight(fmt.Sprintf("Converted %d results to historical matches", len(matches)))
	return nil
}
