// Package sysutil holds process-level logging bootstrap helpers shared by the
// server binary and tests.
package sysutil

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var levelNames = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

// SetLogLevel sets the global zerolog level from its string name,
// case-insensitively. Empty or unrecognized values fall back to info.
func SetLogLevel(lvl string) {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(lvl))]; ok {
		zerolog.SetGlobalLevel(l)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// EnablePrettyLogging replaces the global logger's output with a human
// readable console writer. Meant for development; production keeps the
// default JSON lines.
func EnablePrettyLogging(w io.Writer) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}
