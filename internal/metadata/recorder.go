/*
Metadata collected
- Fetch URLs, HTTP status codes, durations
- Response content types and body fingerprints
- Parser source yields and discovery counts
- Classified failures

Determinism guarantees:
- Metadata is write-only; no component may read it back to influence
  resolution decisions.
- Events are recorded synchronously, in the order the single-threaded
  resolution loop produces them.
*/
package metadata

import (
	"time"

	"go.uber.org/zap"
)

// Sink captures structured resolution events. Implementations must not
// perform control-flow decisions on behalf of the caller.
type Sink interface {
	RecordFetch(fetchURL string, status int, duration time.Duration, contentType string, bodyDigest string)
	RecordParse(sourceURL string, sources []string, discovered int)
	RecordError(packageName string, action string, cause ErrorCause, message string, fetchURL string)
}

// Recorder is the default Sink, emitting structured events through zap.
type Recorder struct {
	logger *zap.Logger
}

// NewRecorder wraps logger as an event sink. A nil logger yields a silent
// recorder, which is the library default.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logger: logger}
}

func (r *Recorder) RecordFetch(fetchURL string, status int, duration time.Duration, contentType string, bodyDigest string) {
	r.logger.Debug("fetch",
		zap.String("url", fetchURL),
		zap.Int("status", status),
		zap.Duration("duration", duration),
		zap.String("content_type", contentType),
		zap.String("body_digest", bodyDigest),
	)
}

func (r *Recorder) RecordParse(sourceURL string, sources []string, discovered int) {
	r.logger.Debug("parse",
		zap.String("url", sourceURL),
		zap.Strings("sources", sources),
		zap.Int("discovered_uris", discovered),
	)
}

func (r *Recorder) RecordError(packageName string, action string, cause ErrorCause, message string, fetchURL string) {
	r.logger.Warn("error",
		zap.String("package", packageName),
		zap.String("action", action),
		zap.Stringer("cause", cause),
		zap.String("message", message),
		zap.String("url", fetchURL),
	)
}
