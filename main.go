package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/groundsegment/space-packets/cmd/decoder"
	"github.com/groundsegment/space-packets/internal/config"
)

// version information - to be set during build time
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "none"
)

func main() {
	// load .env file automatically
	err := godotenv.Load()
	if err != nil {
		log.Println("no .env file found (continuing with system environment)")
	}

	source := handleFlags()
	cfg := config.ParseConfigFromEnv()

	// a --source flag takes precedence over the environment
	if source != "" {
		cfg.SourcePath = source
	}

	// detect the log level
	logLevel := slog.LevelInfo
	if err = logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level: '%s'\n", cfg.LogLevel)
		os.Exit(1)
	}

	// setup our logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// set the maxprocs
	if _, err = maxprocs.Set(maxprocs.Logger(func(message string, args ...any) {
		logger.Info(fmt.Sprintf(message, args...))
	})); err != nil {
		logger.Error("could not set GOMAXPROCS", "error", err)
	}

	logger.Info("starting packet decoder...", "source", cfg.SourcePath)
	if err = decoder.Run(&cfg, logger); err != nil {
		logger.Error("packet decoder failed", "error", err)
		os.Exit(1)
	}
}

func handleFlags() string {
	// define command line flags
	source := flag.String("source", "", "byte source to decode: a file path, or '-' for stdin")
	version := flag.Bool("version", false, "show version information")
	help := flag.Bool("help", false, "show help message")

	// parse all flags
	flag.Parse()

	// handle version flag
	if *version {
		fmt.Printf("space-packets: %s\n", Version)
		fmt.Printf("Build time: %s\n", BuildDate)
		fmt.Printf("Git commit: %s\n", GitCommit)
		os.Exit(0)
	}

	// handle help flag
	if *help {
		printUsage()
		os.Exit(0)
	}

	return *source
}

func printUsage() {
	fmt.Println("Usage: space-packets [--source=<path>]")
	fmt.Println()
	fmt.Println("Decodes a stream of space packets from the given byte source and")
	fmt.Println("logs, relays and archives them according to the environment config.")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  space-packets --source=downlink.bin")
	fmt.Println("  cat downlink.bin | space-packets --source=-")
}
