package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fields is a map of structured data
type Fields map[string]any

// record is a single formatted log line
type record struct {
	Level   Level
	Message string
	Fields  Fields
	Err     error
	Time    time.Time
	Caller  string
}

// Formatter renders a record to bytes
type Formatter interface {
	Format(r *record) ([]byte, error)
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
)

// ConsoleFormatter writes human-oriented single-line logs
type ConsoleFormatter struct {
	config *Config
}

func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

func (f *ConsoleFormatter) Format(r *record) ([]byte, error) {
	var b strings.Builder

	b.WriteString(f.paint(colorGray, r.Time.Format(f.config.TimeFormat)))
	b.WriteByte(' ')
	b.WriteString(f.paint(levelColor(r.Level), fmt.Sprintf("[%-5s]", r.Level)))
	b.WriteByte(' ')

	if r.Caller != "" {
		b.WriteString(f.paint(colorGray, "["+r.Caller+"] "))
	}

	b.WriteString(r.Message)

	if len(r.Fields) > 0 {
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, r.Fields[k]))
		}
		b.WriteByte(' ')
		b.WriteString(f.paint(colorCyan, strings.Join(pairs, " ")))
	}

	if r.Err != nil {
		b.WriteString(f.paint(colorRed, " error="+r.Err.Error()))
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) paint(color, s string) string {
	if !f.config.EnableColors {
		return s
	}
	return color + s + colorReset
}

func levelColor(l Level) string {
	switch l {
	case LevelDebug:
		return colorCyan
	case LevelInfo:
		return colorGreen
	case LevelWarn:
		return colorYellow
	case LevelError, LevelFatal:
		return colorBold + colorRed
	default:
		return colorReset
	}
}

// JSONFormatter writes one JSON object per line
type JSONFormatter struct {
	config *Config
}

func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config}
}

func (f *JSONFormatter) Format(r *record) ([]byte, error) {
	data := make(map[string]any, len(r.Fields)+5)
	for k, v := range r.Fields {
		data[k] = v
	}

	data["level"] = r.Level.String()
	data["message"] = r.Message
	data["timestamp"] = r.Time.Format(time.RFC3339Nano)
	if r.Caller != "" {
		data["caller"] = r.Caller
	}
	if r.Err != nil {
		data["error"] = r.Err.Error()
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
