package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/dataset"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/filesink"
	"github.com/couchcryptid/storm-impact-report/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/storm-impact-report/internal/adapter/kafka"
	"github.com/couchcryptid/storm-impact-report/internal/pipeline"
	"github.com/couchcryptid/storm-impact-report/internal/report"
	"github.com/spf13/cobra"
)

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load the dataset, rank event types, and write the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd)
		},
	}
}

func (a *app) runReport(cmd *cobra.Command) error {
	cfg, logger := a.cfg, a.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DownloadEnabled {
		fetcher := dataset.NewFetcher(cfg.DatasetURL, cfg.DownloadTimeout, logger)
		if _, err := fetcher.EnsureLocal(ctx, cfg.InputPath); err != nil {
			return err
		}
	}

	reader, err := csvfile.Open(cfg.InputPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("dataset close error", "error", err)
		}
	}()

	sinks := []pipeline.ReportSink{filesink.New(cfg.OutputDir, cfg.ReportFormats, logger)}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaReportTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(reader, sinks, logger, a.metrics, pipeline.Options{
		BatchSize: cfg.BatchSize,
		TopN:      cfg.TopN,
	})

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	rep, err := p.Run(ctx)
	if err != nil {
		a.shutdown(srv)
		return err
	}

	if err := report.WriteText(cmd.OutOrStdout(), rep); err != nil {
		return fmt.Errorf("print report: %w", err)
	}
	logger.Info("report written",
		"rows_read", reader.Rows(),
		"output_dir", cfg.OutputDir,
		"formats", cfg.ReportFormats,
	)

	if srv != nil {
		logger.Info("serving report until interrupted", "addr", cfg.HTTPAddr)
		<-ctx.Done()
		a.shutdown(srv)
	}
	return nil
}

func (a *app) shutdown(srv *httpadapter.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", "error", err)
	}
	a.logger.Info("shutdown complete")
}
