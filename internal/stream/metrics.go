package stream

import "expvar"

var metricStreamDropped = expvar.NewInt("stream_events_dropped_total")
