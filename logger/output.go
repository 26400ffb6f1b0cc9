package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DeRuina/timberjack"
	"github.com/rs/zerolog"
)

// writers returns the combined sink for cfg, nil when nothing is
// configured, and the closer of the rotated file.
func writers(cfg *Config, service string) (io.Writer, io.Closer) {
	var out []io.Writer
	switch strings.ToLower(cfg.Output) {
	case "none":
	case "stderr":
		out = append(out, terminal(cfg, os.Stderr, service))
	default:
		out = append(out, terminal(cfg, os.Stdout, service))
	}

	var closer io.Closer
	if cfg.File != "" {
		f := &timberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  cfg.LocalTime,
		}
		out = append(out, f)
		closer = f
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0], closer
	default:
		return zerolog.MultiLevelWriter(out...), closer
	}
}

func terminal(cfg *Config, w io.Writer, service string) io.Writer {
	if f := strings.ToLower(cfg.Format); f != "console" && f != "pretty" {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			return serviceTag(service, cfg.NoColor) + levelTag(fmt.Sprint(i), cfg.NoColor)
		},
		FormatFieldName: func(i interface{}) string { return fmt.Sprint(i) + ":" },
		FormatFieldValue: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
	}
}

const (
	ansiReset = "\033[0m"
	ansiBlue  = "\033[34m"
)

// serviceTag prefixes console lines with the first three letters of the
// service name, e.g. [VOI].
func serviceTag(service string, noColor bool) string {
	if len(service) < 3 || service == "nop" {
		return ""
	}
	tag := "[" + strings.ToUpper(service[:3]) + "]"
	if noColor {
		return tag
	}
	return ansiBlue + tag + ansiReset
}

var levels = map[string]struct{ short, color string }{
	"debug": {"DBG", "\033[36m"},
	"info":  {"INF", "\033[32m"},
	"warn":  {"WRN", "\033[33m"},
	"error": {"ERR", "\033[31m"},
	"fatal": {"FTL", "\033[35m"},
}

func levelTag(level string, noColor bool) string {
	l, ok := levels[strings.ToLower(level)]
	if !ok {
		return "[" + strings.ToUpper(level) + "]"
	}
	if noColor {
		return "[" + l.short + "]"
	}
	return l.color + "[" + l.short + "]" + ansiReset
}

func truncate(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
