package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/olehluchkiv/abslens/internal/analyzer"
	"github.com/olehluchkiv/abslens/internal/config"
	"github.com/olehluchkiv/abslens/internal/demo"
	"github.com/olehluchkiv/abslens/internal/diagram"
	"github.com/olehluchkiv/abslens/internal/index"
	"github.com/olehluchkiv/abslens/internal/lens"
	"github.com/olehluchkiv/abslens/internal/logging"
	"github.com/olehluchkiv/abslens/internal/resolver"
	"github.com/olehluchkiv/abslens/internal/server"
)

func main() {
	// Use a custom FlagSet so we can parse all args regardless of position.
	// Go's default flag.Parse stops at the first non-flag argument, which
	// breaks "abslens ./path -output lenses.txt". We reorder args so flags
	// come first, then positional args.
	flags, positional := reorderArgs(os.Args[1:])

	fs := flag.NewFlagSet("abslens", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default "+config.DefaultFile+" if present)")
	pathFlag := fs.String("path", "", "path or GitHub URL to analyze (alternative to positional argument)")
	fs.Int("port", 8080, "HTTP server port")
	fs.String("filter", "", "package path prefix filter")
	fs.Bool("include-stdlib", false, "include standard library interfaces")
	fs.Bool("include-unexported", false, "include unexported types and interfaces")
	fs.Bool("no-partials", false, "skip partial conformance detection")
	fs.String("log-file", "logs/abslens.log", "log file path (empty for stderr only)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "json", "log format (json, text)")
	fs.Int("max-methods", 5, "methods shown per diagram box (0 for all)")
	format := fs.String("format", "text", "output format (text, json, yaml, mermaid)")
	output := fs.String("output", "", "write output to file instead of stdout")
	serve := fs.Bool("serve", false, "serve the navigation API instead of printing lenses")
	demoFlag := fs.Bool("demo", false, "run the in-process conformance demo and exit")
	var q query
	fs.StringVar(&q.impls, "impls", "", "list implementations of a contract")
	fs.StringVar(&q.methodImpls, "method-impls", "", "list implementations of Contract.Method")
	fs.StringVar(&q.contractsOf, "contracts-of", "", "list contracts a type satisfies")
	fs.StringVar(&q.contractMethods, "contract-methods", "", "list contract methods implemented by Type.Method")

	if err := fs.Parse(flags); err != nil {
		os.Exit(1)
	}
	// Collect any remaining args from flag parsing + our positional args
	positional = append(positional, fs.Args()...)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, fs); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid flag: %v\n", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q: %v\n", cfg.Log.Level, err)
		os.Exit(1)
	}

	logger, logCleanup, err := logging.Setup(cfg.Log.File, level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	defer logCleanup()

	if *demoFlag {
		if err := demo.Run(os.Stdout, logger); err != nil {
			logger.Error("demo failed", "error", err)
			fmt.Fprintf(os.Stderr, "Demo error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Determine input: positional argument takes precedence, then -path flag
	input := ""
	if len(positional) > 0 {
		input = positional[0]
	}
	if input == "" {
		input = *pathFlag
	}
	if input == "" {
		fmt.Fprintln(os.Stderr, "Usage: abslens [flags] <path-or-url>")
		fs.PrintDefaults()
		os.Exit(1)
	}

	// Setup signal handling with context cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	diagramOpts := diagram.DefaultDiagramOptions()
	diagramOpts.MaxMethodsPerBox = cfg.Diagram.MaxMethods
	diagramOpts.IncludeInit = *output != ""

	analysisCfg := server.AnalysisConfig{
		Input: input,
		Analyze: analyzer.AnalyzeOptions{
			Filter:            cfg.Analyze.Filter,
			IncludeStdlib:     cfg.Analyze.IncludeStdlib,
			IncludeUnexported: cfg.Analyze.IncludeUnexported,
			NoPartials:        cfg.Analyze.NoPartials,
		},
		Resolve: resolver.Options{
			CacheDir: cfg.Analyze.CacheDir,
			Download: cfg.Analyze.Download,
		},
		Diagram: diagramOpts,
	}
	snap, cleanup, err := server.RunAnalysis(ctx, analysisCfg, logger)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if *serve {
		store := server.NewStore(snap)
		if cfg.Server.Watch {
			watcher, err := server.NewWatcher(store, analysisCfg, cfg.Server.Debounce, logger)
			if err != nil {
				logger.Error("failed to watch module", "error", err)
				fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", snap.Result.ModuleDir, err)
				os.Exit(1)
			}
			defer watcher.Close()
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Error("watcher stopped", "error", err)
				}
			}()
		}
		fmt.Printf("Serving snapshot %s on http://localhost:%d\n", snap.ID, cfg.Server.Port)
		if err := server.Serve(ctx, store, cfg.Server.Port, logger); err != nil {
			logger.Error("server error", "error", err)
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("failed to create output file", "error", err)
			fmt.Fprintf(os.Stderr, "Error writing to %s: %v\n", *output, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if !q.empty() {
		err = runQuery(w, snap.Index, q)
	} else {
		err = writeReport(w, snap, *format)
	}
	if err != nil {
		logger.Error("output failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *output != "" {
		fmt.Printf("Wrote %s\n", *output)
	}
}

// reorderArgs separates flags and positional arguments so flags can appear
// in any position (before or after the positional path argument).
// Flags that take a value (e.g., -output file.md) consume the next arg.
func reorderArgs(args []string) (flags, positional []string) {
	// Set of flags that take a value argument
	valueFlagSet := map[string]bool{
		"-config": true, "-path": true, "-port": true, "-filter": true,
		"-output": true, "-format": true, "-max-methods": true,
		"-log-file": true, "-log-level": true, "-log-format": true,
		"-impls": true, "-method-impls": true, "-contracts-of": true, "-contract-methods": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			// Check if this flag takes a value (and it's not using = syntax)
			if !strings.Contains(arg, "=") && valueFlagSet[arg] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}
	return flags, positional
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cfg *config.Config, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		g, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch v := g.Get(); f.Name {
		case "port":
			cfg.Server.Port = v.(int)
		case "filter":
			cfg.Analyze.Filter = v.(string)
		case "include-stdlib":
			cfg.Analyze.IncludeStdlib = v.(bool)
		case "include-unexported":
			cfg.Analyze.IncludeUnexported = v.(bool)
		case "no-partials":
			cfg.Analyze.NoPartials = v.(bool)
		case "log-file":
			cfg.Log.File = v.(string)
		case "log-level":
			cfg.Log.Level = v.(string)
		case "log-format":
			cfg.Log.Format = v.(string)
		case "max-methods":
			if n := v.(int); n < 0 {
				err = fmt.Errorf("-max-methods must not be negative, got %d", n)
			} else {
				cfg.Diagram.MaxMethods = n
			}
		}
	})
	return err
}

// writeReport renders the snapshot as lenses or as a Mermaid diagram.
func writeReport(w io.Writer, snap *server.Snapshot, format string) error {
	if strings.EqualFold(format, "mermaid") {
		_, err := io.WriteString(w, snap.Mermaid+"\n")
		return err
	}
	f, err := lens.ParseFormat(format)
	if err != nil {
		return err
	}
	return lens.Render(w, snap.Lenses, f)
}

// query holds the navigation lookups requested on the command line.
type query struct {
	impls           string
	methodImpls     string // Contract.Method
	contractsOf     string
	contractMethods string // Type.Method
}

func (q query) empty() bool {
	return q.impls == "" && q.methodImpls == "" && q.contractsOf == "" && q.contractMethods == ""
}

// runQuery answers each requested lookup, one "name<TAB>file:line" row per result.
func runQuery(w io.Writer, ix *index.Index, q query) error {
	if q.impls != "" {
		rels, err := ix.ImplementationsOf(q.impls)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			writeRow(w, rel.Type.Key(), rel.Type.Pos)
		}
	}
	if q.methodImpls != "" {
		contract, method, err := splitMember(q.methodImpls)
		if err != nil {
			return err
		}
		targets, err := ix.MethodImplementations(contract, method)
		if err != nil {
			return err
		}
		for _, t := range targets {
			writeRow(w, t.Type.Key()+"."+t.Method.Name, t.Method.Pos)
		}
	}
	if q.contractsOf != "" {
		rels, err := ix.ContractsOf(q.contractsOf)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			writeRow(w, rel.Contract.Key(), rel.Contract.Pos)
		}
	}
	if q.contractMethods != "" {
		typ, method, err := splitMember(q.contractMethods)
		if err != nil {
			return err
		}
		cms, err := ix.ContractMethodsFor(typ, method)
		if err != nil {
			return err
		}
		for _, cm := range cms {
			writeRow(w, cm.Contract.Key()+"."+cm.Method.Name, cm.Method.Pos)
		}
	}
	return nil
}

// splitMember splits "Owner.Method" at the last dot, so owners may be
// package-qualified.
func splitMember(s string) (owner, method string, err error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("expected Name.Method, got %q", s)
	}
	return s[:i], s[i+1:], nil
}

func writeRow(w io.Writer, name string, pos analyzer.Position) {
	if pos.IsValid() {
		fmt.Fprintf(w, "%s\t%s:%d\n", name, pos.File, pos.Line)
		return
	}
	fmt.Fprintln(w, name)
}
