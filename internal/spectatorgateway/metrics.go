package spectatorgateway

import "expvar"

var (
	metricWatchersTotal    = expvar.NewInt("room_watchers_total")
	metricWatchersActive   = expvar.NewInt("room_watchers_active")
	metricWatchersRejected = expvar.NewInt("room_watchers_unknown_room_total")
	metricReplayedEvents   = expvar.NewInt("room_watch_replayed_events_total")
	metricFeedRooms        = expvar.NewInt("room_feed_buffers")
)
