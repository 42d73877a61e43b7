package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Chat/internal/app"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/storage/minio"
	"github.com/turtacn/KeyIP-Chat/internal/ingest"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

func newIngestCommand(opts *rootOptions) *cobra.Command {
	var dir string
	var fromBucket bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse and index patent documents from a directory or object-storage bucket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !fromBucket && dir == "" {
				return errors.New(errors.ErrCodeBadRequest, "either --dir or --from-bucket is required")
			}

			ctx := cmd.Context()
			application, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			var source ingest.Source
			if fromBucket {
				source, err = minio.NewSource(ctx, minio.SourceConfig{
					Endpoint:  cfg.MinIO.Endpoint,
					AccessKey: cfg.MinIO.AccessKey,
					SecretKey: cfg.MinIO.SecretKey,
					Bucket:    cfg.MinIO.Bucket,
					UseSSL:    cfg.MinIO.UseSSL,
				}, application.Log)
				if err != nil {
					return err
				}
			} else {
				source = ingest.NewDirSource(dir)
			}

			ingestor, closePublisher, err := application.NewIngestor(source)
			if err != nil {
				return err
			}
			defer closePublisher()

			tally, err := ingestor.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ingestion finished: %d succeeded, %d skipped, %d failed\n",
				tally.Succeeded, tally.Skipped, tally.Failed)
			for _, src := range tally.FailedSources {
				fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s\n", src)
			}
			if tally.Failed > 0 {
				return errors.Newf(errors.ErrCodeFileUnreadable, "%d documents failed to ingest", tally.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "local directory holding .txt documents")
	cmd.Flags().BoolVar(&fromBucket, "from-bucket", false, "read documents from the configured object-storage bucket")
	return cmd
}
