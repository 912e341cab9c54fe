// Command fficheck runs boundary scenarios and verifies that every
// response handle is released.
//
//	fficheck [-strict] [-wasm module.wasm] scenarios.toml
//
// Without -wasm the cases run through the in-process C ABI; with -wasm they
// run through the wazero host against the given module.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/reglet-dev/jsonffi/application/validation"
	"github.com/reglet-dev/jsonffi/client"
	"github.com/reglet-dev/jsonffi/internal/scenario"
	"github.com/reglet-dev/jsonffi/log"
)

type options struct {
	strict    bool
	strictSet bool
	wasm      string
	verbose   bool
	path      string
}

// runner is a Transport whose allocation counter can be observed.
type runner interface {
	client.Transport
	LiveAllocations(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

func main() {
	opts := parseFlags()
	code, err := run(context.Background(), opts, os.Stdout)
	if err != nil {
		fatalf("%v", err)
	}
	os.Exit(code)
}

func parseFlags() options {
	var opts options
	flag.BoolVar(&opts.strict, "strict", false, "reject envelopes with keys besides Ok/Err (overrides the file)")
	flag.StringVar(&opts.wasm, "wasm", "", "run against this WASM module instead of the native ABI")
	flag.BoolVar(&opts.verbose, "v", false, "log boundary diagnostics to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: fficheck [-strict] [-wasm module.wasm] scenarios.toml\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "strict" {
			opts.strictSet = true
		}
	})
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.path = flag.Arg(0)
	return opts
}

func run(ctx context.Context, opts options, out io.Writer) (int, error) {
	suite, err := scenario.Load(opts.path)
	if err != nil {
		return 1, err
	}
	strict := suite.Strict
	if opts.strictSet {
		strict = opts.strict
	}

	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := log.NewLogger(log.WithLevel(level))

	r, err := newRunner(ctx, opts, logger)
	if err != nil {
		return 1, err
	}
	defer func() {
		if err := r.Close(ctx); err != nil {
			logger.Warn("fficheck: close failed", "error", err.Error())
		}
	}()

	copts := []client.Option{client.WithStrict(strict)}
	if strict {
		v, err := validation.NewEnvelopeValidator()
		if err != nil {
			return 1, err
		}
		copts = append(copts, client.WithValidator(v))
	}
	c := client.New(r, copts...)

	baseline, err := r.LiveAllocations(ctx)
	if err != nil {
		return 1, fmt.Errorf("read allocation counter: %w", err)
	}

	failures := 0
	for _, sc := range suite.Cases {
		if err := runCase(ctx, c, sc); err != nil {
			failures++
			fmt.Fprintf(out, "FAIL %s: %v\n", sc.Name, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", sc.Name)
	}

	live, err := r.LiveAllocations(ctx)
	if err != nil {
		return 1, fmt.Errorf("read allocation counter: %w", err)
	}
	if live != baseline {
		failures++
		fmt.Fprintf(out, "FAIL allocation counter: %d live handles, want %d\n", live, baseline)
	}

	fmt.Fprintf(out, "%d cases, %d failures\n", len(suite.Cases), failures)
	if failures > 0 {
		return 1, nil
	}
	return 0, nil
}

func runCase(ctx context.Context, c *client.Client, sc scenario.Case) error {
	req, err := sc.Bytes()
	if err != nil {
		return err
	}
	env, err := c.CallRaw(ctx, req)
	if err != nil {
		return err
	}
	return sc.Check(env)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fficheck: "+format+"\n", args...)
	os.Exit(1)
}
