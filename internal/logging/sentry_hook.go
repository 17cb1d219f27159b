package logging

import (
	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// SentryHook forwards log entries at the configured levels to Sentry.
type SentryHook struct {
	hub    *sentry.Hub
	levels []log.Level
}

func NewSentryHook(levels []log.Level) *SentryHook {
	return &SentryHook{hub: sentry.CurrentHub(), levels: levels}
}

func (h *SentryHook) Levels() []log.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *log.Entry) error {
	event := sentry.NewEvent()
	event.Level = sentryLevel(entry.Level)
	event.Message = entry.Message
	event.Timestamp = entry.Time
	event.Logger = "logrus"

	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			event.Extra[k] = err.Error()
			continue
		}
		event.Extra[k] = v
	}

	if err, ok := entry.Data[log.ErrorKey].(error); ok && err != nil {
		event.Exception = []sentry.Exception{{
			Type:  entry.Message,
			Value: err.Error(),
		}}
	}

	h.hub.CaptureEvent(event)
	return nil
}

func sentryLevel(l log.Level) sentry.Level {
	switch l {
	case log.PanicLevel, log.FatalLevel:
		return sentry.LevelFatal
	case log.ErrorLevel:
		return sentry.LevelError
	case log.WarnLevel:
		return sentry.LevelWarning
	case log.InfoLevel:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}
