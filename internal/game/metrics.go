package game

import "expvar"

var (
	metricRoundsSettled = expvar.NewInt("rounds_settled_total")
	metricSettleErrors  = expvar.NewInt("round_settle_errors_total")
	metricBetsAccepted  = expvar.NewInt("bets_accepted_total")
	metricBetsRejected  = expvar.NewInt("bets_rejected_total")
)
