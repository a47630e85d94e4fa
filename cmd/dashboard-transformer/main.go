package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/superlinear-space/jsnonet-transformer/pkg/generator"
	"github.com/superlinear-space/jsnonet-transformer/pkg/output"
	"github.com/superlinear-space/jsnonet-transformer/pkg/server"
	"github.com/superlinear-space/jsnonet-transformer/pkg/templates"
	"github.com/superlinear-space/jsnonet-transformer/pkg/transform"
)

func main() {
	inputString := flag.String("string", "", "JSON string to transform (alternative to a file argument)")
	outputPath := flag.String("o", "", "Write generated Jsonnet to this file instead of stdout")
	format := flag.String("format", "jsonnet", "Output format: jsonnet, report, json")
	minOccurrences := flag.Int("min-occurrences", 2, "Minimum occurrences before a pattern is extracted")
	indentSize := flag.Int("indent-size", 4, "Spaces per indent level")
	maxLineLength := flag.Int("max-line-length", 120, "Maximum output line length")
	noComments := flag.Bool("no-comments", false, "Don't add comments to output")
	noExtract := flag.Bool("no-extract-repeated", false, "Don't extract repeated values")
	noTemplates := flag.Bool("no-templates", false, "Don't create panel template functions")
	noValidate := flag.Bool("no-validate", false, "Don't require structural validation to pass")
	imports := flag.Bool("imports", false, "Emit a grafonnet import line")
	scaffold := flag.String("scaffold", "", "Emit a builtin dashboard scaffold: "+strings.Join(templates.ScaffoldNames(), ", "))
	scaffoldTitle := flag.String("title", "", "Dashboard title (with -scaffold)")
	serve := flag.Bool("serve", false, "Start the web UI server")
	addr := flag.String("addr", ":8080", "Server listen address (with -serve)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dashboard-transformer [flags] <dashboard.json>\n\n")
		fmt.Fprintf(os.Stderr, "Convert a Grafana dashboard JSON file to Jsonnet.\n\n")
		fmt.Fprintf(os.Stderr, "Modes:\n")
		fmt.Fprintf(os.Stderr, "  transform (default)  Convert a dashboard file or -string input\n")
		fmt.Fprintf(os.Stderr, "  -scaffold            Emit a builtin dashboard scaffold\n")
		fmt.Fprintf(os.Stderr, "  -serve               Start the web UI server\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	genOpts := generator.Options{
		IndentSize:     *indentSize,
		MaxLineLength:  *maxLineLength,
		AddComments:    !*noComments,
		IncludeImports: *imports,
	}

	if *serve {
		runServe(*addr)
		return
	}

	if *scaffold != "" {
		runScaffold(*scaffold, *scaffoldTitle, genOpts, *outputPath)
		return
	}

	var data []byte
	switch {
	case *inputString != "":
		data = []byte(*inputString)
	case flag.NArg() >= 1:
		var err error
		data, err = os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	opts := transform.Options{
		Validate:              !*noValidate,
		MinPatternOccurrences: *minOccurrences,
		ExtractRepeated:       !*noExtract,
		CreateTemplates:       !*noTemplates,
		AddComments:           !*noComments,
		IncludeImports:        *imports,
		IndentSize:            *indentSize,
		MaxLineLength:         *maxLineLength,
	}

	result := transform.Transform(context.Background(), data, opts)
	writeResult(result, *format, *outputPath)
	if !result.Success {
		os.Exit(1)
	}
}

func writeResult(result *transform.Result, format, outputPath string) {
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", e)
	}

	var formatter output.Formatter
	switch format {
	case "jsonnet":
		if result.Success {
			writeText(result.Jsonnet, outputPath)
		}
		return
	case "report":
		formatter = &output.TextFormatter{}
	case "json":
		formatter = &output.JSONFormatter{Indent: true}
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", format)
		os.Exit(2)
	}

	if err := formatter.Format(os.Stdout, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(2)
	}
}

func writeText(text, outputPath string) {
	if outputPath == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "Output written to: %s\n", outputPath)
}

func runScaffold(name, title string, genOpts generator.Options, outputPath string) {
	text, err := templates.RenderScaffold(name, templates.ScaffoldParams{Title: title}, genOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	writeText(text, outputPath)
}

func runServe(addr string) {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	handler := server.Handler(logger)
	logger.Info("dashboard transformer web UI listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(2)
	}
}
