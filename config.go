package main

import (
	"fmt"
	"os"
	"strconv"
)

type config struct {
	PersonsPath   string
	TripsPath     string
	RegionMapPath string
	OutputDir     string

	// SurveyDatabaseURL switches the survey source from CSV to Postgres.
	SurveyDatabaseURL string

	R2Endpoint        string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string

	MetricsTextfile string
	MixtureSeed     uint64
}

func loadConfig() (config, error) {
	seed, err := getUint64Env("GMM_SEED", 1)
	if err != nil {
		return config{}, err
	}

	return config{
		PersonsPath:   getEnv("MID_PERSONS_PATH", "data/MiD2017_Personen.csv"),
		TripsPath:     getEnv("MID_TRIPS_PATH", "data/MiD2017_Wege.csv"),
		RegionMapPath: getEnv("REGION_MAP_PATH", "data/region_types.json"),
		OutputDir:     getEnv("OUTPUT_DIR", "output"),

		SurveyDatabaseURL: os.Getenv("SURVEY_DATABASE_URL"),

		R2Endpoint:        os.Getenv("R2_ENDPOINT"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2Bucket:          getEnv("R2_BUCKET", "omod-calibration"),

		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		MixtureSeed:     seed,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getUint64Env(key string, fallback uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
