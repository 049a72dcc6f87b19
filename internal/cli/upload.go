package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"harvest/config"
	"harvest/internal/adapter/fs"
	"harvest/internal/adapter/objectstore"
	"harvest/internal/domain"
	"harvest/internal/usecase"
)

var (
	uploadSource string
	uploadBucket string
	uploadPrefix string
	uploadExpiry time.Duration
	uploadJSON   bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload output files to S3 and print signed links",
	Long: `Upload every file in the source directory to the configured bucket with a
private ACL, then issue a presigned GET link for each object.

Credentials are read from the environment variables named by
upload.access_key_env and upload.secret_key_env.

Examples:
  harvest upload --bucket my-bucket               # Upload ./output
  harvest upload --source out --expiry 24h --json`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadSource, "source", "", "directory to upload (default from config)")
	uploadCmd.Flags().StringVar(&uploadBucket, "bucket", "", "destination bucket (default from config)")
	uploadCmd.Flags().StringVar(&uploadPrefix, "prefix", "", "object key prefix (default from config)")
	uploadCmd.Flags().DurationVar(&uploadExpiry, "expiry", 0, "signed link lifetime, at most 168h (default from config)")
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	// Command-line overrides
	if uploadSource != "" {
		cfg.Upload.SourceDir = uploadSource
	}
	if uploadBucket != "" {
		cfg.Upload.Bucket = uploadBucket
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Upload.Prefix = uploadPrefix
	}
	if uploadExpiry != 0 {
		cfg.Upload.Expiry = uploadExpiry
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source := config.ResolvePath(GetRootDir(), cfg.Upload.SourceDir)
	if !fs.IsDir(source) {
		return fmt.Errorf("%w: %s", domain.ErrOutputDirMissing, source)
	}

	s3Store, err := objectstore.NewS3Store(ctx, cfg.Upload)
	if err != nil {
		return err
	}
	walker := fs.NewWalker(cfg.Upload.Includes, cfg.Upload.Excludes, cfg.Upload.Recursive)
	uploadUC := usecase.NewUploadUseCase(s3Store, walker)

	files, err := walker.Walk(source)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", source, err)
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No files to upload in %s\n", source)
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Uploading %d files to s3://%s/%s\n", len(files), cfg.Upload.Bucket, cfg.Upload.Prefix)

	bar := newProgressBar(len(files), "Uploading")
	start := time.Now()
	processed := 0

	uploaded, uploadErr := uploadUC.Upload(ctx, usecase.UploadRequest{
		SourceDir: source,
		Prefix:    cfg.Upload.Prefix,
		Expiry:    cfg.Upload.Expiry,
		RunID:     GetRunID(),
	}, func(obj domain.UploadedObject) {
		processed++
		bar.Add(1)
		bar.Describe(etaDescription("Uploading", start, processed, len(files)))
	})

	// Links already issued are printed even when a later upload failed
	if err := printUploaded(cmd, uploaded, cfg.Upload.Expiry); err != nil {
		return err
	}
	if uploadErr != nil {
		return fmt.Errorf("upload failed after %d of %d files: %w", len(uploaded), len(files), uploadErr)
	}
	return nil
}

func printUploaded(cmd *cobra.Command, uploaded []domain.UploadedObject, expiry time.Duration) error {
	out := cmd.OutOrStdout()
	if uploadJSON {
		return writeJSON(out, uploaded)
	}
	if len(uploaded) == 0 {
		return nil
	}

	var total int64
	t := newTable(out)
	t.AppendHeader(table.Row{"Key", "Size", "Signed URL"})
	for _, obj := range uploaded {
		t.AppendRow(table.Row{obj.Key, humanize.Bytes(uint64(obj.Size)), obj.SignedURL})
		total += obj.Size
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d files", len(uploaded)), humanize.Bytes(uint64(total)), ""})
	t.Render()

	fmt.Fprintf(out, "Links expire %s\n", humanize.Time(time.Now().Add(expiry)))
	return nil
}
