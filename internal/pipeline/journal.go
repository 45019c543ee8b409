package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"movie-recap/internal/progress"
)

// journal writes every stage transition once to the logger and once to the
// progress sink as "[TAG] title: message".
type journal struct {
	logger   *zap.Logger
	sink     progress.Sink
	title    string
	warnings []string
}

func newJournal(logger *zap.Logger, sink progress.Sink, title string) *journal {
	return &journal{
		logger: logger.With(zap.String("title", title)),
		sink:   sink,
		title:  title,
	}
}

func (j *journal) push(tag, msg string) {
	j.sink.Push(fmt.Sprintf("[%s] %s: %s", tag, j.title, msg))
}

func (j *journal) info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	j.logger.Info(msg)
	j.push("INFO", msg)
}

func (j *journal) ok(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	j.logger.Info(msg, zap.Bool("ok", true))
	j.push("OK", msg)
}

func (j *journal) warn(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		j.logger.Warn(msg, zap.Error(err))
		msg = msg + ": " + err.Error()
	} else {
		j.logger.Warn(msg)
	}
	j.warnings = append(j.warnings, msg)
	j.push("WARN", msg)
}

func (j *journal) fatal(err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	j.logger.Error(msg, zap.Error(err))
	j.push("FATAL", msg+": "+err.Error())
}
