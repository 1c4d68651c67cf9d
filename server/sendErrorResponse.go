package server

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// StatusCancelled is the non-standard code reported when a client abandons a
// request before we do any work for it.
const StatusCancelled = 499

// counterKey aggregates error counts by location in the source, so that the
// stats endpoint can report where failures originate.
type counterKey struct {
	Code int
	File string
	Line int
}

var (
	mutex    = &sync.Mutex{}
	counters = make(map[counterKey]int64)
)

// AppError encapsulates the error handling of a request, where the handler
// returns rather than writes its error so that rendering and counting happen
// in exactly one place.
type AppError struct {
	Code int
	// Error is the cause, appearing in logs but never in responses.
	Error error
	// Msg is the detail rendered to the client.
	Msg  string
	File string
	Line int
}

// NewAppError constructs an AppError that remembers where it was raised.
func NewAppError(code int, err error, msg string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	return &AppError{
		Code:  code,
		Error: err,
		Msg:   msg,
		File:  file,
		Line:  line,
	}
}

func countError(herr *AppError) {
	key := counterKey{Code: herr.Code, File: herr.File, Line: herr.Line}
	mutex.Lock()
	counters[key]++
	mutex.Unlock()
}

func countOK() {
	key := counterKey{Code: http.StatusOK}
	mutex.Lock()
	counters[key]++
	mutex.Unlock()
}

// countOKResponse tallies a success and closes out the transaction log.
func countOKResponse(logger *zap.Logger) {
	countOK()
	logger.Info("transaction end", zap.Int("status", http.StatusOK))
}

// sendAppErrorResponse renders a returned AppError exactly once.
func sendAppErrorResponse(logger *zap.Logger, w *http.ResponseWriter, herr *AppError) {
	countError(herr)
	fields := []zap.Field{
		zap.Int("status", herr.Code),
		zap.String("message", herr.Msg),
		zap.String("location", fmt.Sprintf("%s:%d", herr.File, herr.Line)),
	}
	if herr.Error != nil {
		fields = append(fields, zap.Error(herr.Error))
	}
	logger.Info("transaction end", fields...)
	sendErrorResponseRaw(w, herr)
}

// sendErrorResponseRaw writes the error detail as JSON without counting or
// logging, for callers that have already done both.
func sendErrorResponseRaw(w *http.ResponseWriter, herr *AppError) {
	(*w).Header().Set("Content-Type", "application/json")
	(*w).WriteHeader(herr.Code)
	fmt.Fprintf(*w, `{"detail": %q}`+"\n", herr.Msg)
}

// renderErrorCounters writes the tally of response codes by source location.
func renderErrorCounters(w http.ResponseWriter) {
	doRenderErrorCounters(w, counters)
}

func doRenderErrorCounters(w http.ResponseWriter, counters map[counterKey]int64) {
	mutex.Lock()
	defer mutex.Unlock()
	fmt.Fprintf(w, "Response Counters:\n")
	for key, count := range counters {
		if key.File != "" {
			fmt.Fprintf(w, "      %d: %9d %s:%d\n", key.Code, count, key.File, key.Line)
		} else {
			fmt.Fprintf(w, "      %d: %9d\n", key.Code, count)
		}
	}
}
