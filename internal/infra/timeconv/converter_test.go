package timeconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidZone(t *testing.T) {
	for _, zone := range []string{"", "Mars/Olympus_Mons", "US/Nowhere"} {
		t.Run(zone, func(t *testing.T) {
			_, err := New(zone)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTimezone)
		})
	}
}

func TestConvert_RoundTripIsLossless(t *testing.T) {
	zones := []string{"UTC", "US/Pacific", "Asia/Kolkata", "Australia/Lord_Howe"}
	stamps := []float64{0, 1507150256, 1507150256.25, 1700000000.5, 1616313600}

	for _, zone := range zones {
		c, err := New(zone)
		require.NoError(t, err)
		for _, ts := range stamps {
			got := c.Convert(ts)
			assert.Equal(t, zone, got.Location().String())
			assert.True(t, got.UTC().Equal(FromEpoch(ts)), "zone %s ts %v", zone, ts)
			assert.Equal(t, int64(ts), got.Unix(), "zone %s ts %v", zone, ts)
		}
	}
}

func TestConvert_DaylightSavingTransition(t *testing.T) {
	c, err := New("America/New_York")
	require.NoError(t, err)

	// 2021-03-14 06:59:59 UTC is 01:59:59 EST; one second later clocks jump to 03:00 EDT.
	before := c.Convert(1615705199)
	after := c.Convert(1615705200)

	_, offBefore := before.Zone()
	_, offAfter := after.Zone()
	assert.Equal(t, -5*3600, offBefore)
	assert.Equal(t, -4*3600, offAfter)
	assert.Equal(t, 1, before.Hour())
	assert.Equal(t, 3, after.Hour())
	assert.Equal(t, time.Second, after.Sub(before))
}

func TestConvert_LocalFields(t *testing.T) {
	c, err := New("US/Pacific")
	require.NoError(t, err)

	got := c.Convert(1507150256)
	assert.Equal(t, "2017-10-04 13:50:56 PDT", got.Format("2006-01-02 15:04:05 MST"))
}

func TestFromEpoch_Fraction(t *testing.T) {
	got := FromEpoch(1.5)
	assert.Equal(t, time.Unix(1, 500_000_000).UTC(), got)
}
