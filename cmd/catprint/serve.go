package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tanmay-maloo/catprint/internal/bitmap"
	"github.com/tanmay-maloo/catprint/internal/config"
	"github.com/tanmay-maloo/catprint/internal/devicelog"
	"github.com/tanmay-maloo/catprint/internal/imagegen"
	"github.com/tanmay-maloo/catprint/internal/job"
	"github.com/tanmay-maloo/catprint/internal/pipeline"
	"github.com/tanmay-maloo/catprint/internal/server"
	"github.com/tanmay-maloo/catprint/internal/transcriber"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the audio processing server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.toml", "path to the configuration file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	repo, err := job.Open("file:" + cfg.Media.Database)
	if err != nil {
		return err
	}
	defer repo.Close()

	sink, err := devicelog.NewSink(cfg.Media.DeviceLog)
	if err != nil {
		return err
	}

	tr, err := transcriber.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.TranscriptionModel, logger.With("src", "transcriber"))
	if err != nil {
		return fmt.Errorf("transcriber setup failed: %w", err)
	}
	gen, err := imagegen.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.ImageModel, logger.With("src", "imagegen"))
	if err != nil {
		return fmt.Errorf("image generator setup failed: %w", err)
	}

	p := &pipeline.Pipeline{
		Repo:        repo,
		Transcriber: tr,
		Generator:   gen,
		MediaDir:    cfg.Media.Dir,
		Bitmap:      bitmap.Options{Invert: cfg.Printer.Invert},
		Log:         logger.With("src", "pipeline"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.UDP.Enabled {
		udp, err := devicelog.ListenUDP(cfg.UDP.Addr, sink, logger.With("src", "udp"))
		if err != nil {
			return err
		}
		go udp.Run(ctx)
	}

	s := server.New(repo, p, sink, cfg.Media.Dir, logger.With("src", "server"))
	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	logger.Info("starting server", "addr", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
