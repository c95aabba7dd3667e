package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/modselect/internal/config"
)

// FileName is the log file created under .modselect/logs.
const FileName = "modselect.log"

// Logger appends timestamped lines to .modselect/logs/modselect.log so users
// can inspect a resolution after the picker has closed the terminal UI.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// Path returns the log file for projectDir.
func Path(projectDir string) string {
	return filepath.Join(projectDir, config.Dir, "logs", FileName)
}

// New creates (or reuses) the log file for the current project directory.
func New(projectDir string) (*Logger, error) {
	path := Path(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{file: f}, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped line to the log file.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\n")
	timestamp := time.Now().Format(time.RFC3339)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line)
}
