package lobby

import "expvar"

var (
	metricRoomsActive = expvar.NewInt("rooms_active")
	metricTickPanics  = expvar.NewInt("room_tick_panics_total")
)
