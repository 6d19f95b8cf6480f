package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func TestWriteTripParquetRoundTrip(t *testing.T) {
	region := 5
	trips, _ := resolveTimes(labelActivities(commuter(1, 480, 540)))
	trips[0].RegionType = &region
	trips = append(trips, Trip{PersonID: 2, LegIndex: 1, DistanceKm: 3})

	var buf bytes.Buffer
	n, err := writeTripParquet(&buf, trips)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	rows, err := parquet.Read[ParquetTrip](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, ParquetTrip{
		PersonID:      1,
		LegIndex:      1,
		Purpose:       1,
		DistanceKm:    1,
		RegionType:    5,
		StartActivity: "HOME",
		DestActivity:  "WORK",
		StartMin:      480,
		StopMin:       510,
		DwellMin:      480,
	}, rows[0])
	require.Equal(t, int32(-1), rows[1].RegionType)
	require.Equal(t, 540.0, rows[1].DwellMin)

	require.Equal(t, int32(-1), rows[2].RegionType)
	require.Equal(t, -1.0, rows[2].DwellMin)
	require.Equal(t, "", rows[2].StartActivity)
}

type recordingPutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (r *recordingPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if r.err != nil {
		return nil, r.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	r.inputs = append(r.inputs, in)
	r.bodies = append(r.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestPublishArtifacts(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, distanceFile)
	parquetPath := filepath.Join(dir, archiveFile)
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(parquetPath, []byte("PAR1"), 0o644))

	putter := &recordingPutter{}
	require.NoError(t, publishArtifacts(context.Background(), putter, "calib", "run-1", []string{jsonPath, parquetPath}))
	require.Len(t, putter.inputs, 2)

	day := time.Now().UTC().Format("2006-01-02")
	first := putter.inputs[0]
	require.Equal(t, "calib", *first.Bucket)
	require.Equal(t, "calibration/"+day+"/run-1/"+distanceFile, *first.Key)
	require.Equal(t, "application/json", *first.ContentType)
	require.Equal(t, "run-1", first.Metadata["run-id"])
	require.Equal(t, []byte(`{}`), putter.bodies[0])

	require.Equal(t, "application/vnd.apache.parquet", *putter.inputs[1].ContentType)
}

func TestPublishArtifactsErrors(t *testing.T) {
	err := publishArtifacts(context.Background(), &recordingPutter{}, "calib", "run-1", []string{filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), groupsFile)
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
	denied := errors.New("access denied")
	err = publishArtifacts(context.Background(), &recordingPutter{err: denied}, "calib", "run-1", []string{path})
	require.ErrorIs(t, err, denied)
}

func TestArtifactKey(t *testing.T) {
	day := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	require.Equal(t, "calibration/2026-03-09/abc/ActivityGroups.json", artifactKey(day, "abc", "/tmp/out/ActivityGroups.json"))
}

func TestGetR2ClientRequiresCredentials(t *testing.T) {
	client, bucket := getR2Client(config{R2Endpoint: "https://r2.example.com", R2Bucket: "calib"})
	require.Nil(t, client)
	require.Empty(t, bucket)

	client, bucket = getR2Client(config{
		R2Endpoint:        "https://r2.example.com",
		R2AccessKeyID:     "id",
		R2SecretAccessKey: "secret",
		R2Bucket:          "calib",
	})
	require.NotNil(t, client)
	require.Equal(t, "calib", bucket)
}
