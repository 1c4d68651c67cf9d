package util

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// NowMS is the current time in milliseconds since the epoch.
func NowMS() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// Time records the duration of the enclosing call under the named timer in
// the default metrics registry. Defer the returned function at the top of
// the call being measured.
func Time(name string) func() {
	started := NowMS()
	return func() {
		elapsed := time.Duration(NowMS()-started) * time.Millisecond
		metrics.GetOrRegisterTimer(name, metrics.DefaultRegistry).Update(elapsed)
	}
}
