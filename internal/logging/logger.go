package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config log configuration
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // "text" or "json"
	Output io.Writer
}

// Logger wraps logrus.Logger with a component tag and an output guard
type Logger struct {
	*logrus.Logger
	component string
	out       *holdWriter
}

// New builds a logger from config. A nil Output means stderr.
func New(config Config) (*Logger, error) {
	logger := logrus.New()

	level := config.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", config.Level)
	}
	logger.SetLevel(lvl)

	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		logger.SetFormatter(&TextFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format: %s", config.Format)
	}

	target := config.Output
	if target == nil {
		target = os.Stderr
	}
	out := &holdWriter{target: target}
	logger.SetOutput(out)

	return &Logger{Logger: logger, component: "llmcmd", out: out}, nil
}

// Discard returns a logger that drops everything, for tests and fallbacks
func Discard() *Logger {
	logger, _ := New(Config{Level: "panic", Output: io.Discard})
	return logger
}

// WithComponent returns a logger sharing the same output, tagged with component
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component, out: l.out}
}

// Entry returns a logrus entry carrying the component field
func (l *Logger) Entry() *logrus.Entry {
	return l.Logger.WithField("component", l.component)
}

// WithField adds field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.Entry().WithField(key, value)
}

// WithFields adds multiple fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Entry().WithFields(fields)
}

// WithError adds error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Entry().WithError(err)
}

// Debug logs at debug level with the component field
func (l *Logger) Debug(args ...interface{}) {
	l.Entry().Debug(args...)
}

// Info logs at info level with the component field
func (l *Logger) Info(args ...interface{}) {
	l.Entry().Info(args...)
}

// Hold buffers every log line written until the returned release func is
// called, which flushes the buffer to the real output. Nested holds are
// released by the outermost call.
func (l *Logger) Hold() (release func()) {
	l.out.hold()
	var once sync.Once
	return func() {
		once.Do(l.out.release)
	}
}

type holdWriter struct {
	mu     sync.Mutex
	target io.Writer
	depth  int
	buf    bytes.Buffer
}

func (w *holdWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.depth > 0 {
		return w.buf.Write(p)
	}
	return w.target.Write(p)
}

func (w *holdWriter) hold() {
	w.mu.Lock()
	w.depth++
	w.mu.Unlock()
}

func (w *holdWriter) release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.depth == 0 {
		return
	}
	w.depth--
	if w.depth == 0 && w.buf.Len() > 0 {
		w.target.Write(w.buf.Bytes())
		w.buf.Reset()
	}
}

// TextFormatter renders "LEVEL [component] message key=value" lines
type TextFormatter struct{}

// Format implements logrus.Formatter
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString(" ")

	if component, ok := entry.Data["component"].(string); ok {
		b.WriteString("[")
		b.WriteString(component)
		b.WriteString("] ")
	}

	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%q", key, fmt.Sprint(entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
