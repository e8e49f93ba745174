// Command edgarindex fetches SEC EDGAR filing indexes and writes the
// records as CSV or JSON.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joeychilson/edgarindex"
)

const dateLayout = "2006-01-02"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edgarindex",
		Short: "Fetch SEC EDGAR filing indexes",
		Example: "  edgarindex full -o master.csv\n" +
			"  edgarindex daily --start 1998-05-01 --end 1998-05-20 --format json",
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a TOML config file")
	flags.String("user-agent", "", "user agent sent to EDGAR, e.g. \"Name <email>\"")
	flags.String("ftp-addr", "", "address of the EDGAR archive host")
	flags.Duration("timeout", 0, "network timeout per operation")
	flags.Int("concurrency", 0, "number of index files fetched in parallel")
	flags.String("format", "", "output format, csv or json")
	flags.StringP("output", "o", "", "write records to a file instead of stdout")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newFullCmd(), newDailyCmd())
	return cmd
}

func newFullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "full",
		Short: "Fetch the complete master index of all filings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, edgarindex.IndexModeFull, edgarindex.IndexOptions{})
		},
	}
}

func newDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Aggregate daily index files over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := dateOptions(cmd)
			if err != nil {
				return err
			}
			return runIndex(cmd, edgarindex.IndexModeDaily, opts)
		},
	}
	cmd.Flags().String("start", "", "first filing date to include, YYYY-MM-DD")
	cmd.Flags().String("end", "", "last filing date to include, YYYY-MM-DD")
	return cmd
}

func dateOptions(cmd *cobra.Command) (edgarindex.IndexOptions, error) {
	var opts edgarindex.IndexOptions
	start, err := cmd.Flags().GetString("start")
	if err != nil {
		return opts, err
	}
	if start != "" {
		opts.Start, err = time.Parse(dateLayout, start)
		if err != nil {
			return opts, fmt.Errorf("parsing start date: %w", err)
		}
	}
	end, err := cmd.Flags().GetString("end")
	if err != nil {
		return opts, err
	}
	if end != "" {
		opts.End, err = time.Parse(dateLayout, end)
		if err != nil {
			return opts, fmt.Errorf("parsing end date: %w", err)
		}
	}
	return opts, nil
}

func runIndex(cmd *cobra.Command, mode edgarindex.IndexMode, opts edgarindex.IndexOptions) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Verbose)

	client := edgarindex.NewClient(
		edgarindex.WithUserAgent(cfg.UserAgent),
		edgarindex.WithFTPAddress(cfg.FTPAddr),
		edgarindex.WithTimeout(cfg.Timeout),
		edgarindex.WithFetchConcurrency(cfg.Concurrency),
		edgarindex.WithLogger(logger),
	)

	records, err := client.Index(cmd.Context(), mode, &opts)
	if err != nil {
		return err
	}

	out := os.Stdout
	if cfg.Output != "" {
		out, err = os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()
	}
	return writeRecords(out, cfg.Format, records)
}

func writeRecords(w io.Writer, format string, records []*edgarindex.IndexRecord) error {
	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"cik", "company_name", "form_type", "date_filed", "filename"}); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		for _, r := range records {
			row := []string{r.CIK, r.CompanyName, r.FormType, r.DateFiled.Format(dateLayout), r.Filename}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func getVersion() string {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	return fmt.Sprintf("%s %s/%s", version, runtime.GOOS, runtime.GOARCH)
}
