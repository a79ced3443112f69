package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/reelrank/internal/adapters/loader"
	app "github.com/okian/reelrank/internal/app"
	"github.com/okian/reelrank/internal/menu"
	"github.com/okian/reelrank/pkg/logger"
)

const logFilePermission = 0o600

func main() {
	var (
		moviesFile  = flag.String("movies", "", "Movie catalog file loaded before the menu starts")
		ratingsFile = flag.String("ratings", "", "Ratings file loaded before the menu starts")
		delimiter   = flag.String("delimiter", "|", "Field separator used by both files")
		logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
		logFile     = flag.String("log", "", "Write logs to this file instead of stderr")
	)
	flag.Parse()

	out, closeLog, err := logOutput(*logFile)
	if err != nil {
		os.Stderr.WriteString("failed to open log file: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	if err := logger.InitWithOptions(out, logger.FormatText); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(*logLevel); err != nil {
		os.Stderr.WriteString("invalid log level: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithLoader(loader.New(loader.WithDelimiter(*delimiter), loader.WithLogger(log.Named("loader")))),
		app.WithFiles(*moviesFile, *ratingsFile),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to load data: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer svc.Stop()

	err = menu.New(svc, os.Stdin, os.Stdout, menu.WithLogger(log.Named("menu"))).Run(ctx)
	// Restore default signal handling so a second interrupt kills the process.
	stop()
	if err != nil && ctx.Err() == nil {
		log.Error(ctx, "menu stopped", logger.Error(err))
	}
}

// logOutput keeps stdout free for the menu: logs go to stderr or to path.
func logOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
