// FILE: logward/src/internal/sink/file.go
package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"logward/src/internal/core"
	"logward/src/internal/format"
	"logward/src/internal/redact"

	"github.com/lixenwraith/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig holds file sink configuration
type FileConfig struct {
	Path       string
	BufferSize int

	// Rotation
	MaxSizeMB  int  // size threshold per file
	MaxBackups int  // numbered backups kept after rotation
	Compress   bool // gzip rotated backups
	DailyRotate bool
}

// FileSink appends formatted lines to a file with size- and day-based
// rotation. Rotation is delegated to lumberjack; the day-change check
// forces a rotation on the first write of a new calendar day.
type FileSink struct {
	input     chan envelope
	config    FileConfig
	writer    *lumberjack.Logger
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter
	redactor  redactorRef

	lastWriteDay atomic.Int64 // days since epoch
	rotating     atomic.Bool

	// Statistics
	totalProcessed atomic.Uint64
	totalDropped   atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewFileSink creates a file sink.
func NewFileSink(cfg FileConfig, redactor *redact.Redactor, logger *log.Logger, formatter format.Formatter) *FileSink {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = core.DefaultBufferSize
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}

	fs := &FileSink{
		input:  make(chan envelope, cfg.BufferSize),
		config: cfg,
		writer: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
			LocalTime:  true,
		},
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
	}
	fs.redactor.set(redactor)
	fs.lastProcessed.Store(time.Time{})
	fs.lastWriteDay.Store(epochDay(time.Now()))

	if formatter == nil {
		formatter = format.NewTextFormatter(format.Options{}, logger)
	}
	fs.formatter = formatter

	return fs
}

// SetRedactor swaps the redaction policy.
func (fs *FileSink) SetRedactor(rd *redact.Redactor) {
	fs.redactor.set(rd)
}

func (fs *FileSink) Log(entry *core.LogEntry) bool {
	select {
	case fs.input <- envelope{entry: entry}:
		return true
	case <-fs.done:
		fs.totalDropped.Add(1)
		return false
	default:
		fs.totalDropped.Add(1)
		return false
	}
}

func (fs *FileSink) Start(ctx context.Context) error {
	fs.wg.Add(1)
	go fs.processLoop(ctx)
	fs.logger.Debug("msg", "File sink started",
		"component", "file_sink",
		"path", fs.config.Path)
	return nil
}

func (fs *FileSink) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	select {
	case fs.input <- envelope{flushed: flushed}:
	case <-fs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	return awaitFlush(ctx, flushed)
}

func (fs *FileSink) Stop() {
	fs.stopOnce.Do(func() {
		close(fs.done)
		fs.wg.Wait()
		if err := fs.writer.Close(); err != nil {
			fs.logger.Warn("msg", "Error closing log file",
				"component", "file_sink",
				"error", err)
		}
	})
}

func (fs *FileSink) GetStats() SinkStats {
	lastProc, _ := fs.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "file",
		TotalProcessed: fs.totalProcessed.Load(),
		TotalDropped:   fs.totalDropped.Load(),
		StartTime:      fs.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"path":        fs.config.Path,
			"max_size_mb": fs.config.MaxSizeMB,
			"max_backups": fs.config.MaxBackups,
		},
	}
}

func (fs *FileSink) processLoop(ctx context.Context) {
	defer fs.wg.Done()

	for {
		select {
		case env := <-fs.input:
			if env.entry == nil {
				if env.flushed != nil {
					close(env.flushed)
				}
				continue
			}
			fs.write(env.entry)

		case <-ctx.Done():
			return
		case <-fs.done:
			return
		}
	}
}

func (fs *FileSink) write(entry *core.LogEntry) {
	fs.totalProcessed.Add(1)
	fs.lastProcessed.Store(time.Now())

	fs.maybeRotateForDay()

	if rd := fs.redactor.get(); rd != nil {
		entry = rd.EntryForTarget(entry, redact.TargetFile)
	}

	formatted := formatEntry(fs.formatter, entry, fs.logger)
	if _, err := fs.writer.Write(formatted); err != nil {
		fs.logger.Error("msg", "Failed to write log entry",
			"component", "file_sink",
			"path", fs.config.Path,
			"error", err)
	}
}

// maybeRotateForDay forces a rotation on the first write of a new calendar
// day. The rotation runs in the background so writes are not blocked, and
// the atomic guard prevents concurrent rotations.
func (fs *FileSink) maybeRotateForDay() {
	if !fs.config.DailyRotate {
		return
	}
	today := epochDay(time.Now())
	last := fs.lastWriteDay.Load()
	if today == last || !fs.lastWriteDay.CompareAndSwap(last, today) {
		return
	}
	if !fs.rotating.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer fs.rotating.Store(false)
		if err := fs.writer.Rotate(); err != nil {
			fs.logger.Warn("msg", "Daily rotation failed",
				"component", "file_sink",
				"error", err)
		}
	}()
}

func epochDay(t time.Time) int64 {
	year, month, day := t.Date()
	return int64(year)*10000 + int64(month)*100 + int64(day)
}
