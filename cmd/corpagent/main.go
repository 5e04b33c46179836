package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"corpagent/internal/analyze"
	"corpagent/internal/config"
	"corpagent/internal/docio"
	"corpagent/internal/kb"
	"corpagent/internal/logger"
	"corpagent/internal/patch"
	"corpagent/internal/render"
	"corpagent/internal/report"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// analyzeFlags holds the parsed flags for the analyze command.
type analyzeFlags struct {
	format         string
	out            string
	kbPath         string
	configPath     string
	process        string
	topK           int
	maxConcurrency int
	annotationsOut string
	patchOut       string
	timeout        time.Duration
	verbose        bool
}

func main() {
	root := &cobra.Command{
		Use:   "corpagent",
		Short: "Analyze corporate documents for ADGM compliance",
		Long:  "CorpAgent analyzes pre-extracted legal document batches against the ADGM knowledge base: document classification, red-flag detection, checklist verification, citations, and compliance scoring.",
	}

	var flags analyzeFlags
	analyzeCmd := &cobra.Command{
		Use:   "analyze <batch-file>",
		Short: "Run the compliance pipeline over a document batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], flags)
		},
	}

	f := analyzeCmd.Flags()
	f.StringVar(&flags.format, "format", "json", "Output format: json or md")
	f.StringVar(&flags.out, "out", "", "Write the report to file instead of stdout")
	f.StringVar(&flags.kbPath, "kb", "", "Knowledge base YAML file (default: built-in ADGM knowledge base)")
	f.StringVar(&flags.configPath, "config", "", "Options YAML file")
	f.StringVar(&flags.process, "process", "", "Process id to verify against (default: resolve from the batch)")
	f.IntVar(&flags.topK, "top-k", 0, "Citations attached per issue; 0 disables citation retrieval")
	f.IntVar(&flags.maxConcurrency, "max-concurrency", 0, "Worker fan-out bound for per-document and per-issue stages")
	f.StringVar(&flags.annotationsOut, "annotations-out", "", "Write annotation instructions as JSON to this file")
	f.StringVar(&flags.patchOut, "patch-out", "", "Write suggested clause patches in diff-match-patch format to this file")
	f.DurationVar(&flags.timeout, "timeout", 0, "Batch deadline; on expiry a partial report is produced (0 = none)")
	f.BoolVar(&flags.verbose, "verbose", false, "Log pipeline progress at debug level")

	root.AddCommand(analyzeCmd)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		// cobra already printed the error
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, batchPath string, flags analyzeFlags) error {
	if flags.format != "json" && flags.format != "md" {
		return codeError(3, "--format must be json or md, got %q", flags.format)
	}

	// Options: defaults, then config file, then explicit flag overrides.
	opts := config.Default()
	if flags.configPath != "" {
		loaded, err := config.LoadFile(flags.configPath)
		if err != nil {
			return codeError(3, "loading config: %s", err)
		}
		opts = loaded
	}
	if cmd.Flags().Changed("top-k") {
		opts.CitationTopK = flags.topK
	}
	if cmd.Flags().Changed("max-concurrency") {
		opts.MaxConcurrency = flags.maxConcurrency
	}
	if err := opts.Validate(); err != nil {
		return codeError(3, "invalid options: %s", err)
	}

	log := logger.New(analyze.Tool, flags.verbose)

	base := kb.Default()
	if flags.kbPath != "" {
		loaded, err := kb.LoadFile(flags.kbPath)
		if err != nil {
			return codeError(3, "loading knowledge base: %s", err)
		}
		base = loaded
	}

	docs, err := docio.Load(batchPath)
	if err != nil {
		return codeError(3, "loading batch: %s", err)
	}
	log.Debug("batch loaded", "path", batchPath, "documents", len(docs))

	ctx := context.Background()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	analyzer := analyze.New(base, opts, nil, version, log)
	rep := analyzer.Run(ctx, docs, flags.process)

	if flags.annotationsOut != "" {
		annotations := report.Annotations(rep.Issues)
		data, err := json.MarshalIndent(annotations, "", "  ")
		if err != nil {
			return codeError(3, "encoding annotations: %s", err)
		}
		if err := os.WriteFile(flags.annotationsOut, data, 0o644); err != nil {
			return codeError(3, "writing annotations file: %s", err)
		}
	}

	if flags.patchOut != "" {
		diffText := patch.GenerateDiff(docs, rep.Issues, os.Stderr)
		if err := os.WriteFile(flags.patchOut, []byte(diffText), 0o644); err != nil {
			// Patches are advisory; the report still renders.
			fmt.Fprintf(os.Stderr, "WARN: patch write failed: %s\n", err)
		}
	}

	renderer, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(3, "invalid format: %s", err)
	}
	outputBytes, err := renderer.Render(rep)
	if err != nil {
		return codeError(3, "rendering output: %s", err)
	}

	if flags.out != "" {
		if err := os.WriteFile(flags.out, outputBytes, 0o644); err != nil {
			return codeError(3, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := os.Stdout.Write(outputBytes); err != nil {
		return codeError(3, "writing output: %s", err)
	}
	// Ensure output ends with a newline for terminal friendliness.
	if len(outputBytes) > 0 && outputBytes[len(outputBytes)-1] != '\n' {
		fmt.Fprintln(os.Stdout)
	}

	return nil
}
