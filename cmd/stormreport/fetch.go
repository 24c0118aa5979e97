package main

import (
	"fmt"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/dataset"
	"github.com/spf13/cobra"
)

func (a *app) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the dataset to INPUT_PATH if it is not already there",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetcher := dataset.NewFetcher(a.cfg.DatasetURL, a.cfg.DownloadTimeout, a.logger)
			downloaded, err := fetcher.EnsureLocal(cmd.Context(), a.cfg.InputPath)
			if err != nil {
				return err
			}
			if downloaded {
				fmt.Fprintf(cmd.OutOrStdout(), "downloaded %s\n", a.cfg.InputPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already present\n", a.cfg.InputPath)
			}
			return nil
		},
	}
}
