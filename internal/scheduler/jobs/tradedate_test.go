package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayTradeDate(t *testing.T) {
	newYork := time.FixedZone("EDT", -4*3600)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "exchange time at the collection schedule",
			now:  time.Date(2026, 8, 24, 9, 26, 0, 0, exchangeTZ),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			// A host west of UTC is still on the previous local
			// calendar day when the 09:26 schedule fires.
			name: "western host clock at the same instant",
			now:  time.Date(2026, 8, 23, 21, 26, 0, 0, newYork),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "settlement schedule in exchange time",
			now:  time.Date(2026, 8, 24, 15, 40, 0, 0, exchangeTZ),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			// 15:40 CST is 07:40 UTC, same exchange day
			name: "UTC host clock after the close",
			now:  time.Date(2026, 8, 24, 7, 40, 0, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, todayTradeDate(tt.now))
		})
	}
}
