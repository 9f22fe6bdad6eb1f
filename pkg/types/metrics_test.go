package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPlatform(t *testing.T) {
	assert.True(t, ValidPlatform(PlatformFacebook))
	assert.True(t, ValidPlatform(PlatformInstagram))
	assert.True(t, ValidPlatform(PlatformLinkedIn))
	assert.True(t, ValidPlatform(PlatformTikTok))
	assert.False(t, ValidPlatform("twitter"))
	assert.False(t, ValidPlatform(""))
}

func TestMetricKeySeries(t *testing.T) {
	m := &DailyMetrics{
		Platform: PlatformFacebook, PageID: "p", PostID: "a",
		DownloadDate: "2026-01-01",
	}
	assert.Equal(t, SeriesKey{Platform: PlatformFacebook, PageID: "p", PostID: "a"}, m.Series())
	assert.Equal(t, m.Series(), m.Key().Series())

	other := &DailyMetrics{
		Platform: PlatformFacebook, PageID: "p", PostID: "a",
		DownloadDate: "2026-01-02",
	}
	assert.Equal(t, m.Series(), other.Series(), "rows on different days share a series")
	assert.NotEqual(t, m.Key(), other.Key())
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrDataDirEmpty)
	assert.NoError(t, Config{DataDir: "/tmp/x"}.Validate())
}
