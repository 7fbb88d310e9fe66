package jobs

import "time"

// Exchange local time. The cron schedules fire at session events in
// this zone, so the trade date must be resolved here too, not in the
// server's local zone.
var exchangeTZ = time.FixedZone("CST", 8*3600)

// todayTradeDate maps an instant to its exchange-calendar trade date,
// normalized to midnight UTC like every stored trade_date key.
func todayTradeDate(now time.Time) time.Time {
	now = now.In(exchangeTZ)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
