package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "nu10", cfg.Grading.Table)
	assert.True(t, cfg.Statistics.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Statistics.CacheTTL)
	assert.Equal(t, 4, cfg.Reports.BulkConcurrency)
	assert.Equal(t, 10, cfg.Attendance.HistoryLimit)
	assert.Equal(t, "present", cfg.Attendance.DefaultStatus)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("GRADING_TABLE", " COARSE7 ")
	v.Set("REPORTS_BULK_CONCURRENCY", 0)
	v.Set("STATISTICS_CACHE_TTL", "bogus")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, "coarse7", cfg.Grading.Table)
	assert.Equal(t, 1, cfg.Reports.BulkConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.Statistics.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}
