// Command apfloatpi computes pi to an arbitrary number of significant
// digits using the Chudnovsky binary-splitting algorithm (spec.md §4.7,
// §8 scenario 4), grounded on the teacher's main.go flag-parsing and
// os.Exit conventions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lookbusy1344/go-apfloat/apcontext"
	"github.com/lookbusy1344/go-apfloat/apnum"
	apnumregistry "github.com/lookbusy1344/go-apfloat/apnum/registry"
	nttregistry "github.com/lookbusy1344/go-apfloat/ntt/registry"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		verbose     = flag.Bool("verbose", false, "Verbose progress output on stderr")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFor(*verbose),
	}))

	if *showVersion {
		fmt.Printf("apfloatpi %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp || flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	digits, threads, radix, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse error: %v\n", err)
		os.Exit(1)
	}

	apctx := apcontext.NewDefaultContext()
	apctx.DefaultRadix = radix
	apctx.NumberOfProcessors = threads
	apctx.CleanupAtExit = true

	apcontext.RegisterCleanup(func() {
		nttregistry.Clear()
		nttregistry.Clear3()
		apnumregistry.Clear()
	})
	apcontext.InstallShutdownHook(apctx)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting pi computation", "digits", digits, "threads", threads, "radix", radix)
	start := time.Now()

	result, err := apnum.Pi(ctx, apctx, radix, digits, threads)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(2)
	}

	elapsed := time.Since(start)
	logger.Info("pi computation complete", "elapsed", elapsed.String())

	fmt.Println(result.String())
	os.Exit(0)
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// parseArgs parses "digits [threads] [radix]" (spec.md §6).
func parseArgs(args []string) (digits int64, threads, radix int, err error) {
	if len(args) == 0 || len(args) > 3 {
		return 0, 0, 0, fmt.Errorf("expected 1 to 3 arguments: digits [threads] [radix]")
	}

	digits, err = strconv.ParseInt(args[0], 10, 64)
	if err != nil || digits <= 0 {
		return 0, 0, 0, fmt.Errorf("invalid digits %q: must be a positive integer", args[0])
	}

	threads = 1
	if len(args) >= 2 {
		t, terr := strconv.Atoi(args[1])
		if terr != nil || t <= 0 {
			return 0, 0, 0, fmt.Errorf("invalid threads %q: must be a positive integer", args[1])
		}
		threads = t
	}

	radix = 10
	if len(args) == 3 {
		r, rerr := strconv.Atoi(args[2])
		if rerr != nil || r < 2 || r > 36 {
			return 0, 0, 0, fmt.Errorf("invalid radix %q: must be between 2 and 36", args[2])
		}
		radix = r
	}

	return digits, threads, radix, nil
}

func printHelp() {
	fmt.Printf(`apfloatpi %s

Usage: apfloatpi [options] <digits> [threads] [radix]

Computes pi to <digits> significant digits using Chudnovsky
binary-splitting, optionally spread across <threads> worker nodes and
rendered in <radix> (2-36, default 10).

Options:
  -help       Show this help message
  -version    Show version information
  -verbose    Verbose progress output on stderr

Examples:
  apfloatpi 1000
  apfloatpi 100000 4
  apfloatpi 500 4 16

Exit codes:
  0  success
  1  argument parse error
  2  runtime error (computation failed or was cancelled)
`, Version)
}
