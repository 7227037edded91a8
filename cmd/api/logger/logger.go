package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

var Info = log.New(os.Stdout, "[INFO]\t", log.Ltime|log.Lshortfile)
var Warn = log.New(os.Stderr, "[WARN]\t", log.Ltime|log.Lshortfile)
var Error = log.New(os.Stderr, "[ERROR]\t", log.Ltime|log.Lshortfile)

// Init additionally writes all levels to a rotating log file at path.
// An empty path keeps console-only logging. The returned closer releases the file.
func Init(path string) (io.Closer, error) {
	if path == "" {
		return nopCloser{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	// Fail early on unwritable paths instead of on the first log line
	if _, err := file.Write(nil); err != nil {
		return nil, err
	}

	Info.SetOutput(io.MultiWriter(os.Stdout, file))
	Warn.SetOutput(io.MultiWriter(os.Stderr, file))
	Error.SetOutput(io.MultiWriter(os.Stderr, file))

	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
