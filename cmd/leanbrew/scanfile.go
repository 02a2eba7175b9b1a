package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/leanbrew/feedfilter"
)

var (
	scanOut    string
	scanDigest string
	scanURL    string
)

var scanFileCmd = &cobra.Command{
	Use:   "scan-file <page.html>",
	Short: "Filter a saved timeline page with the stored toggles",
	Long: `scan-file parses a saved X home page, runs scan passes over the feed
column until every rendered post is decided, and prints the decisions as
JSON lines. --out writes the filtered page, --digest a Markdown list of
the posts that were kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runScanFile,
}

func init() {
	scanFileCmd.Flags().StringVarP(&scanOut, "out", "o", "", "write the filtered HTML here")
	scanFileCmd.Flags().StringVar(&scanDigest, "digest", "", "write a Markdown digest of kept posts here")
	scanFileCmd.Flags().StringVar(&scanURL, "url", "https://x.com/home", "location the page was saved from")
}

func runScanFile(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := feedfilter.OpenStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	f := feedfilter.New(cfg, store, logger)
	defer f.Close()

	ctx := cmd.Context()
	rep, err := f.ScanDocument(ctx, in, scanURL)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, d := range rep.Decisions {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	logger.Info("leanbrew: scan done", "kept", rep.Kept, "removed", rep.Removed, "pending", rep.Pending, "passes", rep.Passes)

	if scanOut != "" {
		if err := writeFile(scanOut, rep.WriteHTML); err != nil {
			return err
		}
	}
	if scanDigest != "" {
		err := writeFile(scanDigest, func(w io.Writer) error { return rep.WriteDigest(ctx, w, "Kept posts") })
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(out); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
