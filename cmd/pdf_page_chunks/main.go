package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf"
)

type options struct {
	page    int
	filter  string
	format  string
	seed    string
	name    string
	verbose bool
}

func main() {
	if err := run(os.Args[0], os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(program string, args []string, stdout, stderr io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet(program, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.IntVarP(&opts.page, "page", "p", 1, "1-based page to inspect")
	flags.StringVarP(&opts.filter, "filter", "f", "", "Only show chunks containing this text, ignoring case")
	flags.StringVar(&opts.format, "format", "text", "Output format: text, json")
	flags.StringVar(&opts.seed, "seed", "", "Print a rectangle field descriptor for the first chunk containing this text")
	flags.StringVar(&opts.name, "name", "", "Name of the seeded field (defaults to the --seed text)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log page resolution details to stderr")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "PDF Page Chunks - list the positioned text of a page to author field descriptors\n\n")
		fmt.Fprintf(stderr, "USAGE:\n  %s [OPTIONS] <pdf_file>\n\nOPTIONS:\n", filepath.Base(program))
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(stderr, "  %s bundle.pdf\n", filepath.Base(program))
		fmt.Fprintf(stderr, "  %s --page 3 --filter inv bundle.pdf\n", filepath.Base(program))
		fmt.Fprintf(stderr, "  %s --seed INV-001 --name INVOICE_NO --format json bundle.pdf\n", filepath.Base(program))
	}

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errors.New("exactly one PDF file path is required")
	}
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported output format: %s", opts.format)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	file, err := filepath.Abs(flags.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	svc, err := pdf.NewService(1<<40, filepath.Dir(file), pdf.Options{Logger: logger})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if opts.seed != "" {
		seeded, err := svc.SeedField(ctx, pdf.SeedFieldRequest{
			Path: file,
			Page: opts.page,
			Text: opts.seed,
			Name: opts.name,
		})
		if err != nil {
			return err
		}
		if opts.format == "json" {
			return writeJSON(stdout, seeded.Field)
		}
		f := seeded.Field
		fmt.Fprintf(stdout, "%s: x=%.2f y=%.2f width=%.2f height=%.2f (from %q, %d match(es))\n",
			f.Name, f.X, f.Y, f.Width, f.Height, seeded.Chunk.Text, seeded.Matches)
		return nil
	}

	result, err := svc.PageChunks(ctx, pdf.PageChunksRequest{Path: file, Page: opts.page, Filter: opts.filter})
	if err != nil {
		return err
	}
	if opts.format == "json" {
		return writeJSON(stdout, result)
	}

	fmt.Fprintf(stdout, "%s page %d/%d, height %.2f, fonts: %v\n",
		result.Path, result.Page, result.PageCount, result.Height, result.Fonts)
	fmt.Fprintf(stdout, "%8s %8s %8s %8s %8s  %s\n", "X", "Y", "WIDTH", "TOP", "BOTTOM", "TEXT")
	for _, c := range result.Chunks {
		fmt.Fprintf(stdout, "%8.2f %8.2f %8.2f %8.2f %8.2f  %q\n", c.X, c.Y, c.Width, c.Top, c.Bottom, c.Text)
	}
	if result.Filter != "" {
		fmt.Fprintf(stdout, "%d of %d chunks match %q\n", len(result.Chunks), result.TotalChunks, result.Filter)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
