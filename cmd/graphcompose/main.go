package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/hanpama/graphcompose/internal/compose"
	"github.com/hanpama/graphcompose/internal/eventbus"
	"github.com/hanpama/graphcompose/internal/fragment"
	"github.com/hanpama/graphcompose/internal/otel"
	"github.com/hanpama/graphcompose/internal/schema"
)

const rootUsage = `graphcompose: GraphQL schema composition

USAGE:
  graphcompose <command> [flags]

COMMANDS:
  compose          Compose fragment directories into one schema and print its SDL
  help             Show help for any command
`

const composeUsage = `compose FLAGS:
  -fragments.root <dir>    Directory holding one subdirectory per fragment (default: .)
  -custom <name>           Fragment holding custom definitions and resolvers
  -federated               Produce a federated subgraph
  -env <name>              Environment; "production" skips the schema artifact (default: development)
  -artifact <file>         Schema artifact path (default: exports/graphql/schema.graphql)
  -limit.default <n>       Default page size of declarative query resolvers (default: 100)
  -limit.max <n>           Maximum page size; 0 means no maximum (default: 0)
  -out <file>              Write the composed SDL to file (default: stdout)
  -otel.endpoint <addr>    OTLP collector endpoint
  -otel.service <name>     OpenTelemetry service name (default: graphcompose)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("graphcompose", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "compose":
		return cmdCompose(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "compose":
		fmt.Fprint(stdout, composeUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdCompose(args []string, stdout, stderr io.Writer) error {
	rootDir := "."
	custom := ""
	outFile := ""
	otelEndpoint := ""
	otelService := "graphcompose"
	cfg := compose.Config{Environment: "development"}

	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&rootDir, "fragments.root", rootDir, "Fragment root directory")
	fs.StringVar(&custom, "custom", custom, "Custom fragment name")
	fs.BoolVar(&cfg.Federated, "federated", cfg.Federated, "Produce a federated subgraph")
	fs.StringVar(&cfg.Environment, "env", cfg.Environment, "Environment")
	fs.StringVar(&cfg.ArtifactPath, "artifact", compose.DefaultArtifactPath, "Schema artifact path")
	fs.IntVar(&cfg.Limits.Default, "limit.default", 100, "Default page size")
	fs.IntVar(&cfg.Limits.Max, "limit.max", 0, "Maximum page size")
	fs.StringVar(&outFile, "out", outFile, "Write composed SDL to file")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, composeUsage)
		return err
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("logger setup: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	bus := eventbus.New()
	shutdown, err := otel.Setup(otelEndpoint, otelService, bus)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx := context.Background()
	provider, err := fragment.NewFileSystemProvider(ctx, rootDir)
	if err != nil {
		return fmt.Errorf("load fragments: %w", err)
	}
	sch, err := compose.New(cfg, compose.WithLogger(logger), compose.WithBus(bus)).
		GenerateFrom(ctx, provider, custom)
	if err != nil {
		return fmt.Errorf("compose schema: %w", err)
	}
	if sch.IsEmpty() {
		logger.Warn("no types to compose", zap.String("root", rootDir))
	}

	sdl := schema.Render(sch)
	if outFile == "" {
		fmt.Fprint(stdout, sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}

func newLogger(env string) (*zap.Logger, error) {
	if env == compose.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
