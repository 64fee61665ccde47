package logger

import (
	"log"
	"os"
	"sync"
)

const prefix = "WEATHER_REPORTER: "

var (
	once sync.Once
	out  *log.Logger
	errs *log.Logger
)

// Init sets up the package loggers: informational output goes to stdout,
// warnings and errors to stderr.
func Init() {
	once.Do(func() {
		out = log.New(os.Stdout, prefix, log.LstdFlags|log.Lshortfile)
		errs = log.New(os.Stderr, prefix, log.LstdFlags|log.Lshortfile)
	})
}

func Info(message string, v ...interface{}) {
	if out == nil {
		Init()
	}
	out.Printf("INFO: "+message, v...)
}

func Debug(message string, v ...interface{}) {
	if out == nil {
		Init()
	}
	out.Printf("DEBUG: "+message, v...)
}

func Warn(message string, v ...interface{}) {
	if errs == nil {
		Init()
	}
	errs.Printf("WARN: "+message, v...)
}

func Error(message string, v ...interface{}) {
	if errs == nil {
		Init()
	}
	errs.Printf("ERROR: "+message, v...)
}
