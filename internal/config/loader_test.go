package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// 无配置文件时依赖默认值启动
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "inkwell-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, 10, cfg.Revision.SnapshotInterval)
	assert.Equal(t, 20, cfg.Revision.AutoSaveKeep)
	assert.Equal(t, 0.70, cfg.Revision.SimilarityThreshold)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Observability.Metrics.Path)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("INKWELL_TEST_HOST", "db.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "host: ${INKWELL_TEST_HOST:localhost}", "host: db.internal"},
		{"default used", "host: ${INKWELL_TEST_MISSING:localhost}", "host: localhost"},
		{"empty default", "password: ${INKWELL_TEST_MISSING:}", "password: "},
		{"no default kept as-is", "key: ${INKWELL_TEST_MISSING}", "key: ${INKWELL_TEST_MISSING}"},
		{"no placeholder", "plain: value", "plain: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}
