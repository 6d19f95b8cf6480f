package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"MID_PERSONS_PATH", "OUTPUT_DIR", "SURVEY_DATABASE_URL", "R2_BUCKET", "GMM_SEED"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, "data/MiD2017_Personen.csv", cfg.PersonsPath)
	require.Equal(t, "output", cfg.OutputDir)
	require.Empty(t, cfg.SurveyDatabaseURL)
	require.Equal(t, "omod-calibration", cfg.R2Bucket)
	require.Equal(t, uint64(1), cfg.MixtureSeed)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MID_TRIPS_PATH", "/data/trips.csv")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("GMM_SEED", "42")
	t.Setenv("R2_BUCKET", "calib")

	cfg, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, "/data/trips.csv", cfg.TripsPath)
	require.Equal(t, "/tmp/out", cfg.OutputDir)
	require.Equal(t, uint64(42), cfg.MixtureSeed)
	require.Equal(t, "calib", cfg.R2Bucket)
}

func TestLoadConfigRejectsBadSeed(t *testing.T) {
	t.Setenv("GMM_SEED", "-3")
	_, err := loadConfig()
	require.ErrorContains(t, err, "GMM_SEED")
}

func TestMaskDatabaseURL(t *testing.T) {
	cases := map[string]string{
		"postgres://mid:s3cret@db:5432/survey": "postgres://mid:***@db:5432/survey",
		"postgres://mid@db/survey":             "postgres://mid@db/survey",
		"postgres://db/survey":                 "postgres://db/survey",
		"postgres://mid:p@ss@db/survey":        "postgres://mid:***@db/survey",
		"host=db user=mid password=x":          "host=db user=mid password=x",
	}
	for in, want := range cases {
		require.Equal(t, want, maskDatabaseURL(in), in)
	}
}
