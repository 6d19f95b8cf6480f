package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"
)

// ParquetTrip is the schema of the enriched trip archive. Missing values are -1.
type ParquetTrip struct {
	PersonID      int64   `parquet:"person_id"`
	LegIndex      int32   `parquet:"leg_index"`
	Purpose       int32   `parquet:"purpose"`
	DistanceKm    float64 `parquet:"distance_km"`
	RegionType    int32   `parquet:"region_type"`
	StartActivity string  `parquet:"start_activity"`
	DestActivity  string  `parquet:"dest_activity"`
	StartMin      float64 `parquet:"start_min"`
	StopMin       float64 `parquet:"stop_min"`
	DwellMin      float64 `parquet:"dwell_min"`
}

func toParquetTrip(t Trip) ParquetTrip {
	row := ParquetTrip{
		PersonID:      t.PersonID,
		LegIndex:      int32(t.LegIndex),
		Purpose:       int32(t.Purpose),
		DistanceKm:    t.DistanceKm,
		RegionType:    -1,
		StartActivity: t.StartActivity.Name(),
		DestActivity:  t.DestActivity.Name(),
		StartMin:      t.Start,
		StopMin:       t.Stop,
		DwellMin:      -1,
	}
	if t.RegionType != nil {
		row.RegionType = int32(*t.RegionType)
	}
	if t.DwellTime != nil {
		row.DwellMin = *t.DwellTime
	}
	return row
}

// writeTripParquet writes the resolved trips as Parquet rows to w.
func writeTripParquet(w io.Writer, trips []Trip) (int, error) {
	rows := make([]ParquetTrip, len(trips))
	for i, t := range trips {
		rows[i] = toParquetTrip(t)
	}

	writer := parquet.NewGenericWriter[ParquetTrip](w)
	n, err := writer.Write(rows)
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return n, fmt.Errorf("close parquet writer: %w", err)
	}
	return n, nil
}

func getR2Client(cfg config) (*s3.Client, string) {
	if cfg.R2Endpoint == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" {
		return nil, ""
	}

	endpoint := cfg.R2Endpoint
	client := s3.New(s3.Options{
		BaseEndpoint: &endpoint,
		Region:       "auto",
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
	})

	return client, cfg.R2Bucket
}

// objectPutter is the part of the S3 client the publisher uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func artifactKey(day time.Time, runID, path string) string {
	return fmt.Sprintf("calibration/%s/%s/%s", day.Format("2006-01-02"), runID, filepath.Base(path))
}

func contentTypeFor(path string) string {
	if strings.HasSuffix(path, ".parquet") {
		return "application/vnd.apache.parquet"
	}
	return "application/json"
}

// publishArtifacts uploads each file under calibration/<date>/<runID>/.
func publishArtifacts(ctx context.Context, client objectPutter, bucket, runID string, paths []string) error {
	startTime := time.Now()
	day := startTime.UTC()

	var total int64
	for _, path := range paths {
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		key := artifactKey(day, runID, path)
		contentType := contentTypeFor(path)
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &bucket,
			Key:         &key,
			Body:        bytes.NewReader(body),
			ContentType: &contentType,
			Metadata: map[string]string{
				"run-id": runID,
				"date":   day.Format("2006-01-02"),
			},
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		total += int64(len(body))
		log.Printf("[publish] Uploaded %s (%.2f MB)", key, float64(len(body))/1024/1024)
	}

	log.Printf("[publish] Published %d artifacts (%.2f MB) in %s",
		len(paths), float64(total)/1024/1024, time.Since(startTime))
	return nil
}
