package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"harvest/config"
	"harvest/internal/adapter/cache"
	"harvest/internal/adapter/fetch"
	"harvest/internal/adapter/scraper"
	"harvest/internal/adapter/sink"
	"harvest/internal/domain"
	"harvest/internal/port"
	"harvest/internal/usecase"
)

var (
	scrapeSite string
	scrapeOut  string
	scrapeDB   string
	scrapeJSON bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a faculty directory into structured records",
	Long: `Read the configured faculty directory, visit every linked profile and
extract name, department, graduate degree and graduate school. Records are
written to CSV and optionally upserted into a SQLite database.

Profiles that cannot be read are reported as warnings at the end.

Examples:
  harvest scrape                        # Default site to faculty.csv
  harvest scrape --site apu --db fac.db # Also store records in SQLite`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSite, "site", "", "site name from scrape.sites (default from config)")
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "", "CSV output file (default from config)")
	scrapeCmd.Flags().StringVar(&scrapeDB, "db", "", "SQLite database to upsert records into")
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	if scrapeOut != "" {
		cfg.Scrape.Output = scrapeOut
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	site, ok := cfg.Site(scrapeSite)
	if !ok {
		name := scrapeSite
		if name == "" {
			name = cfg.Scrape.DefaultSite
		}
		return fmt.Errorf("%w: %q", domain.ErrUnknownSite, name)
	}

	client := fetch.NewClient(cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
	pages := cache.NewPageCache(256, 10*time.Minute)
	sc, err := scraper.New(client, pages, site)
	if err != nil {
		return fmt.Errorf("site %q: %w", site.Name, err)
	}

	// Output files are opened once every profile has been read
	sinks := sink.NewLazy(func(ctx context.Context) (port.FacultySink, error) {
		return openSinks(ctx, cfg)
	})
	closed := false
	defer func() {
		if !closed {
			sinks.Close()
		}
	}()

	scrapeUC := usecase.NewScrapeUseCase(sc, sinks)

	dirURL, _ := sc.DirectoryURL()
	fmt.Fprintf(cmd.ErrOrStderr(), "Scraping %s (%s)\n", site.University, dirURL)

	bar := newProgressBar(-1, "Profiles")
	result, err := scrapeUC.Scrape(ctx, func(string) {
		bar.Add(1)
	})
	bar.Finish()
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}
	closed = true
	if err := sinks.Close(); err != nil {
		return fmt.Errorf("failed to finish output: %w", err)
	}

	out := cmd.OutOrStdout()
	if scrapeJSON {
		if err := writeJSON(out, result.Records); err != nil {
			return err
		}
	} else {
		printFaculty(cmd, result.Records)
		fmt.Fprintf(out, "\nScraped %d of %d profiles\n", len(result.Records), result.Profiles)
		fmt.Fprintf(out, "Records written to: %s\n", config.ResolvePath(GetRootDir(), cfg.Scrape.Output))
		if scrapeDB != "" {
			fmt.Fprintf(out, "Database: %s\n", config.ResolvePath(GetRootDir(), scrapeDB))
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", w)
		}
	}

	return nil
}

func openSinks(ctx context.Context, cfg *config.Config) (sink.Multi, error) {
	csvPath := config.ResolvePath(GetRootDir(), cfg.Scrape.Output)
	if err := config.EnsureDir(filepath.Dir(csvPath)); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	csvSink, err := sink.CreateCSV(csvPath)
	if err != nil {
		return nil, err
	}
	sinks := sink.Multi{csvSink}

	if scrapeDB != "" {
		dbSink, err := sink.OpenSQLite(ctx, config.ResolvePath(GetRootDir(), scrapeDB), GetRunID())
		if err != nil {
			csvSink.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		sinks = append(sinks, dbSink)
	}

	return sinks, nil
}

func printFaculty(cmd *cobra.Command, records []domain.Faculty) {
	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"First", "Last", "Department", "Degree", "Graduate School"})
	for _, r := range records {
		t.AppendRow(table.Row{r.FirstName, r.LastName, r.Department, r.GradDegree, r.GradSchool})
	}
	t.Render()
}
