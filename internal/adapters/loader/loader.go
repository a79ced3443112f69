// Package loader reads the movie catalog and the rating log from
// delimited text sources.
//
// Catalog lines are genre|catalog_id|title and rating lines are
// title|score|rater_id. Blank lines are ignored; malformed lines are
// skipped, logged and counted in the returned report.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/reelrank/internal/domain/model"
	"github.com/okian/reelrank/pkg/logger"
	"github.com/okian/reelrank/pkg/metrics"
)

const (
	defaultDelimiter    = "|"
	defaultMaxLineBytes = 1 << 20
	initialLineBytes    = 64 * 1024
	fieldsPerLine       = 3
)

var validate = validator.New()

// Loader parses record sources into domain collections.
type Loader struct {
	delimiter    string
	maxLineBytes int
	logger       logger.Logger
	now          func() time.Time
}

// New creates a Loader with configuration options.
func New(opts ...Option) *Loader {
	l := &Loader{
		delimiter:    defaultDelimiter,
		maxLineBytes: defaultMaxLineBytes,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Delimiter reports the configured field separator.
func (l *Loader) Delimiter() string { return l.delimiter }

func (l *Loader) log() logger.Logger {
	if l.logger != nil {
		return l.logger
	}
	return logger.Named("loader")
}

// ReadCatalog parses catalog lines from r. source names r in logs and in
// the report.
func (l *Loader) ReadCatalog(ctx context.Context, r io.Reader, source string) (*model.Catalog, model.LoadReport, error) {
	var entries []model.CatalogEntry
	report, err := l.scan(ctx, r, model.KindCatalog, source, func(fields []string) error {
		entry := model.CatalogEntry{Genre: fields[0], CatalogID: fields[1], Title: fields[2]}
		if err := validate.Struct(entry); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, report, err
	}
	catalog := model.NewCatalog(entries...)
	l.log().Info(ctx, "catalog loaded",
		logger.String("source", source),
		logger.Int("movies", catalog.Len()),
		logger.Int("skipped", report.Skipped),
	)
	return catalog, report, nil
}

// ReadRatings parses rating lines from r.
func (l *Loader) ReadRatings(ctx context.Context, r io.Reader, source string) (*model.RatingLog, model.LoadReport, error) {
	var events []model.RatingEvent
	report, err := l.scan(ctx, r, model.KindRatings, source, func(fields []string) error {
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("score %q: %w", fields[1], err)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return fmt.Errorf("score %q is not finite", fields[1])
		}
		event := model.RatingEvent{Title: fields[0], Score: score, RaterID: fields[2]}
		if err := validate.Struct(event); err != nil {
			return err
		}
		events = append(events, event)
		return nil
	})
	if err != nil {
		return nil, report, err
	}
	log := model.NewRatingLog(events...)
	l.log().Info(ctx, "ratings loaded",
		logger.String("source", source),
		logger.Int("movies", log.Len()),
		logger.Int("events", log.EventCount()),
		logger.Int("skipped", report.Skipped),
	)
	return log, report, nil
}

// LoadCatalogFile reads the catalog stored at path.
func (l *Loader) LoadCatalogFile(ctx context.Context, path string) (*model.Catalog, model.LoadReport, error) {
	f, err := open(path)
	if err != nil {
		metrics.RecordError("loader", "open")
		return nil, model.LoadReport{Kind: model.KindCatalog, Source: path}, err
	}
	defer func() { _ = f.Close() }()
	return l.ReadCatalog(ctx, f, path)
}

// LoadRatingsFile reads the rating log stored at path.
func (l *Loader) LoadRatingsFile(ctx context.Context, path string) (*model.RatingLog, model.LoadReport, error) {
	f, err := open(path)
	if err != nil {
		metrics.RecordError("loader", "open")
		return nil, model.LoadReport{Kind: model.KindRatings, Source: path}, err
	}
	defer func() { _ = f.Close() }()
	return l.ReadRatings(ctx, f, path)
}

// Load reads both files concurrently and returns them as a new snapshot.
// Either failure cancels the other read.
func (l *Loader) Load(ctx context.Context, moviesPath, ratingsPath string) (*model.Snapshot, error) {
	var (
		catalog       *model.Catalog
		ratings       *model.RatingLog
		catalogReport model.LoadReport
		ratingsReport model.LoadReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, catalogReport, err = l.LoadCatalogFile(gctx, moviesPath)
		return err
	})
	g.Go(func() error {
		var err error
		ratings, ratingsReport, err = l.LoadRatingsFile(gctx, ratingsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.Snapshot{
		ID:            uuid.NewString(),
		Catalog:       catalog,
		Ratings:       ratings,
		LoadedAt:      l.now(),
		CatalogReport: catalogReport,
		RatingsReport: ratingsReport,
	}, nil
}

// scan feeds every well-formed line of r to accept. Lines accept rejects,
// and lines longer than maxLineBytes, are counted as skipped.
func (l *Loader) scan(ctx context.Context, r io.Reader, kind, source string, accept func([]string) error) (model.LoadReport, error) {
	start := time.Now()
	report := model.LoadReport{Kind: kind, Source: source}

	br := bufio.NewReaderSize(r, min(initialLineBytes, l.maxLineBytes))
	buf := make([]byte, 0, min(initialLineBytes, l.maxLineBytes+1))

	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		raw, size, readErr := l.readLine(br, buf)
		buf = raw[:0]
		if readErr != nil && readErr != io.EOF {
			metrics.RecordError("loader", "read")
			return report, fmt.Errorf("%w: %s: %w", ErrReadSource, source, readErr)
		}
		if size > 0 || readErr == nil {
			lineNo++
			loaded, err := l.parseLine(raw, size, kind, accept)
			switch {
			case err != nil:
				report.Skipped++
				l.log().Warn(ctx, "skipping malformed line",
					logger.String("kind", kind),
					logger.String("source", source),
					logger.Int("line", lineNo),
					logger.Int("bytes", size),
					logger.Error(err),
				)
			case loaded:
				report.Loaded++
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	metrics.RecordLoad(kind, report.Loaded, report.Skipped, float64(time.Since(start).Microseconds())/1000.0)
	return report, nil
}

// parseLine splits and accepts one raw line. Blank lines are neither
// loaded nor skipped.
func (l *Loader) parseLine(raw []byte, size int, kind string, accept func([]string) error) (bool, error) {
	if size > l.maxLineBytes {
		return false, fmt.Errorf("%s line of %d bytes exceeds %d", kind, size, l.maxLineBytes)
	}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return false, nil
	}
	fields := strings.Split(line, l.delimiter)
	if len(fields) != fieldsPerLine {
		return false, fmt.Errorf("expected %d fields, got %d", fieldsPerLine, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if err := accept(fields); err != nil {
		return false, err
	}
	return true, nil
}

// readLine reads through the next newline. It appends at most
// maxLineBytes+1 bytes to buf and drains the rest of a longer line, so
// size (the line length without its newline) may exceed len(line).
func (l *Loader) readLine(br *bufio.Reader, buf []byte) (line []byte, size int, err error) {
	line = buf[:0]
	over := false
	for {
		var chunk []byte
		chunk, err = br.ReadSlice('\n')
		size += len(chunk)
		if over = over || len(line)+len(chunk) > l.maxLineBytes+1; !over {
			line = append(line, chunk...)
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if n := len(chunk); n > 0 && chunk[n-1] == '\n' {
			size--
		}
		return line, size, err
	}
}

func open(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	return f, nil
}
