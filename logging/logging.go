// Package logging contains the loggers shared by the pprate server and
// command line tool. Diagnostics are structured JSON on the standard
// error, access logs are in the common log format on the standard output.
package logging

import (
	golog "log"
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/gorilla/handlers"
)

// Logger is the JSON logger used for estimation diagnostics and server
// events.
var Logger = log.Logger{
	Handler: json.New(os.Stderr),
	Level:   log.InfoLevel,
}

// SetLevel changes the level of Logger. Valid names are those accepted by
// log.ParseLevel, e.g. "debug" or "warn".
func SetLevel(name string) error {
	level, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	Logger.Level = level
	return nil
}

// MakeAccessLogHandler wraps handler with another handler that logs each
// request to the capacity endpoints.
func MakeAccessLogHandler(handler http.Handler) http.Handler {
	return handlers.LoggingHandler(golog.Writer(), handler)
}
