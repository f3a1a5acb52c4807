package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocleanse/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ARTIFACT_STORE", "ARTIFACT_DIR", "DATABASE_URL", "DATABASE_DRIVER", "INFERENCE_MAJORITY", "CATEGORY_ORDER"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "./artifacts", cfg.Storage.Dir)
	assert.Equal(t, "outliers.json", cfg.Storage.RegistryName)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Profiling.InferenceSampleSize)
	assert.Equal(t, 0.5, cfg.Profiling.MajorityThreshold)
	assert.Equal(t, "sorted", cfg.Encoding.CategoryOrder)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadSQLBackend(t *testing.T) {
	t.Setenv("ARTIFACT_STORE", "SQL")
	t.Setenv("DATABASE_URL", "postgres://cleanse@localhost/cleanse?sslmode=disable")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.Storage.Backend)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := map[string]map[string]string{
		"sql without url":   {"ARTIFACT_STORE": "sql", "DATABASE_URL": ""},
		"unknown backend":   {"ARTIFACT_STORE": "s3"},
		"majority too high": {"INFERENCE_MAJORITY": "1.5"},
		"zero sample":       {"INFERENCE_SAMPLE_SIZE": "0"},
		"bad order":         {"CATEGORY_ORDER": "random"},
		"bad policy":        {"UNKNOWN_CATEGORY_POLICY": "ignore"},
		"bad driver":        {"DATABASE_DRIVER": "mysql"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
