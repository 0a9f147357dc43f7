// Package logger writes per-session trading logs to dated files, one file
// per engine instance and timeframe.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/haruquant/swingrisk/pkg/types"
)

// Logger represents a file logger for decision-engine activity
type Logger struct {
	name      string
	timeframe string
	logFile   *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logDir    string
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARN"
	LogLevelError    LogLevel = "ERROR"
	LogLevelDecision LogLevel = "DECISION"
	LogLevelRisk     LogLevel = "RISK"
)

// NewLogger creates a new file logger for the given engine name and signal
// timeframe. Log files are dated and rotated daily by filename.
func NewLogger(name, timeframe string) (*Logger, error) {
	return NewLoggerAt("logs", name, timeframe)
}

// NewLoggerAt is NewLogger with an explicit log directory.
func NewLoggerAt(logDir, name, timeframe string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s_%s.log", name, timeframe, timestamp)
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		name:      name,
		timeframe: timeframe,
		logFile:   file,
		logger:    log.New(file, "", 0),
		logDir:    logDir,
	}

	l.writeSessionHeader()
	return l, nil
}

func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
SWING RISK SESSION STARTED
================================================================================
Engine: %s | Timeframe: %s
Started: %s
================================================================================
`, l.name, l.timeframe, time.Now().Format("2006-01-02 15:04:05"))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Println(fmt.Sprintf("[%s] [%s] %s", timestamp, level, message))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// LogError logs an error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// LogDecision logs one engine decision with its full risk context.
func (l *Logger) LogDecision(d types.Decision) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	verdict := "REJECTED"
	if d.Accepted {
		verdict = "ACCEPTED"
	}

	entry := fmt.Sprintf(`
[%s] [DECISION] ==================== %s %s ====================
Direction: %s | Lots: %.2f | Stop: %.0f pips
ADR: %.0f pips | Daily Range: %.0f%% of ADR
VaR: %.2f -> %.2f (%+.2f%%)
Reason: %s
=============================================================`,
		timestamp, d.Symbol, verdict,
		d.Direction, d.Lots, d.StopPips,
		d.ADR, d.RangePct,
		d.CurrentVaR, d.ProposedVaR, d.DeltaVaRPct,
		d.Reason)

	l.logger.Println(entry)
}

// LogCycleSummary logs the end-of-cycle totals.
func (l *Logger) LogCycleSummary(evaluated, accepted, rejected, skipped int, portfolioVaR float64, elapsed time.Duration) {
	l.Log(LogLevelRisk, "cycle done: %d evaluated, %d accepted, %d rejected, %d skipped | portfolio VaR %.2f | took %s",
		evaluated, accepted, rejected, skipped, portfolioVaR, elapsed.Round(time.Millisecond))
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		footer := fmt.Sprintf(`
================================================================================
SWING RISK SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, timestamp)
		l.logger.Print(footer)

		return l.logFile.Close()
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s_%s.log", l.name, l.timeframe, timestamp)
	return filepath.Join(l.logDir, filename)
}
