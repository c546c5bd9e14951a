package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
	"github.com/nguyentantai21042004/audio-summarizer/internal/config"
	"github.com/nguyentantai21042004/audio-summarizer/internal/logger"
)

const usage = `Usage: summarizer [-config config.yaml] <command> [flags]

Commands:
  summarize -a <audio> [-t <template>]   transcribe audio and write a report
  transcribe [-speakers] <audio>         transcribe audio only
  split <audio> <chunk_mb>               cut audio into chunks of at most chunk_mb
  review -t <transcript>                 reformat a transcript into speaker paragraphs
  watch                                  summarize every audio file dropped in the inbox
  serve                                  run the HTTP API
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("summarizer", flag.ContinueOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	configPath := global.String("config", "config.yaml", "path to the YAML config")
	if err := global.Parse(args); err != nil {
		return 1
	}
	if global.NArg() == 0 {
		global.Usage()
		return 1
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger
	log := logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Debug(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

	a := &app{cfg: cfg, log: log}
	command, rest := global.Arg(0), global.Args()[1:]

	switch command {
	case "summarize":
		err = a.summarize(ctx, rest)
	case "transcribe":
		err = a.transcribe(ctx, rest)
	case "split":
		err = a.split(ctx, rest)
	case "review":
		err = a.review(ctx, rest)
	case "watch":
		err = a.watch(ctx)
	case "serve":
		err = a.serve(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		global.Usage()
		return 1
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperror.Reason(err))
		return 1
	}
	return 0
}
