package logging

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards error-like logrus entries to Sentry.
type SentryHook struct {
	levels []logrus.Level
}

func NewSentryHook(levels []logrus.Level) *SentryHook {
	return &SentryHook{
		levels: levels,
	}
}

func (h *SentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	if errVal, ok := entry.Data[logrus.ErrorKey]; ok {
		if err, ok := errVal.(error); ok {
			sentry.CaptureException(err)
			return nil
		}
	}
	sentry.CaptureException(errors.New(entry.Message))
	return nil
}
