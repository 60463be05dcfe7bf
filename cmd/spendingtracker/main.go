package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/mikezucc/spendingtracker/internal/cli"
	"github.com/mikezucc/spendingtracker/internal/core"
	"github.com/mikezucc/spendingtracker/internal/csvparse"
	apphttp "github.com/mikezucc/spendingtracker/internal/http"
	applog "github.com/mikezucc/spendingtracker/internal/log"
	"github.com/mikezucc/spendingtracker/internal/store"
)

var root struct {
	Serve  ServeCmd  `cmd:"" default:"1" help:"Start the dashboard server."`
	Import ImportCmd `cmd:"" help:"Import CSV bank exports without starting the server."`
	Clear  ClearCmd  `cmd:"" help:"Remove every stored transaction."`
}

// ServeCmd runs the HTTP server until interrupted.
type ServeCmd struct{}

func (c *ServeCmd) Run() error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	slot, closeSlot := cli.OpenSlot(logger, cfg)
	defer func() { _ = closeSlot() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.Open(ctx, slot)
	srv := apphttp.NewServer(":"+cfg.Port, st, logger, cfg.CacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendingtracker server",
			applog.FieldPort, cfg.Port,
			applog.FieldBackend, cfg.StoreBackend,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// ImportCmd ingests CSV exports directly into the configured slot.
type ImportCmd struct {
	Files []string `arg:"" help:"CSV files to import." type:"existingfile"`
}

func (c *ImportCmd) Run() error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	slot, closeSlot := cli.OpenSlot(logger, cfg)
	defer func() { _ = closeSlot() }()

	ctx := context.Background()
	st := store.Open(ctx, slot)

	var rows []core.RawRow
	for _, path := range c.Files {
		if !strings.HasSuffix(strings.ToLower(path), ".csv") {
			logger.Warn("Skipping non-CSV file", applog.FieldFile, path)
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		fileRows, err := csvparse.Parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		rows = append(rows, fileRows...)
		logger.Info("Parsed CSV file", applog.FieldFile, path, applog.FieldRows, len(fileRows))
	}

	added, err := st.Ingest(ctx, rows)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d new transactions (%d stored total)\n", added, st.Len())
	return nil
}

// ClearCmd wipes the configured slot.
type ClearCmd struct{}

func (c *ClearCmd) Run() error {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	slot, closeSlot := cli.OpenSlot(logger, cfg)
	defer func() { _ = closeSlot() }()

	ctx := context.Background()
	st := store.Open(ctx, slot)
	if err := st.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("All transactions cleared")
	return nil
}

func main() {
	kctx := kong.Parse(&root,
		kong.Name("spendingtracker"),
		kong.Description("Personal spending dashboard fed by CSV bank exports."))
	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}
