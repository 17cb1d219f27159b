// Package logging configures the process-wide logrus logger: level, format,
// rotating file output and optional Sentry reporting.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	Environment   string
	SentryEnabled bool
	SentryDSN     string
	Release       string
}

// Setup applies params to the standard logger. The returned func flushes
// Sentry and closes the log file; call it once on shutdown.
func Setup(params Params) (func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if params.LogFormatJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         params.SentryDSN,
			Environment: params.Environment,
			Release:     params.Release,
		})
		if err != nil {
			return cleanup, fmt.Errorf("sentry init: %w", err)
		}
		log.AddHook(NewSentryHook([]log.Level{
			log.PanicLevel,
			log.FatalLevel,
			log.ErrorLevel,
		}))
		cleanups = append(cleanups, func() { sentry.Flush(2 * time.Second) })
	}

	if params.LogFileName == "" {
		if params.LogToStdout {
			log.SetOutput(os.Stdout)
		} else {
			log.SetOutput(io.Discard)
		}
		return cleanup, nil
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}
	if err := os.MkdirAll(filepath.Dir(params.LogFileName), 0o755); err != nil {
		return cleanup, fmt.Errorf("create log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   params.LogFileName,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		LocalTime:  true,
		Compress:   true,
	}
	cleanups = append(cleanups, func() { _ = rotating.Close() })

	if params.LogToStdout {
		log.SetOutput(NewCombinedWriter(os.Stdout, rotating))
	} else {
		log.SetOutput(rotating)
	}
	return cleanup, nil
}

func GetLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
