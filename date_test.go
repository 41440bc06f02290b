package streamzip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDOSDateTimeComponents(t *testing.T) {
	// 2024-03-17, 14:35:46 encoded per the DOS bit-packed layout.
	date := uint16((2024-1980)<<9 | 3<<5 | 17)
	clock := uint16(14<<11 | 35<<5 | 23) // second/2 == 23 -> 46s

	d := DOSDateTime{Date: date, Time: clock}
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 3, d.Month())
	assert.Equal(t, 17, d.Day())
	assert.Equal(t, 14, d.Hour())
	assert.Equal(t, 35, d.Minute())
	assert.Equal(t, 46, d.Second())

	assert.True(t, d.ToTime().Equal(time.Date(2024, time.March, 17, 14, 35, 46, 0, time.UTC)))
}

func TestDOSDateTimeEpoch(t *testing.T) {
	d := DOSDateTime{Date: 1 << 5, Time: 0} // month=1, day=0 is invalid in practice but bits are bits
	assert.Equal(t, 1980, d.Year())
}
