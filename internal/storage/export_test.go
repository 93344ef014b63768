package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey/backend/internal/domain"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestExport_UploadsSnapshot(t *testing.T) {
	fake := &fakeS3{}
	exp := NewS3Exporter(fake, "survey-exports", "")
	exp.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }

	res, err := exp.Export(context.Background(), []domain.Trainee{
		{ID: 1, Lastname: "Doe", Firstname: "Jane"},
		{ID: 2, Lastname: "Roe", Firstname: "Rick"},
	})
	require.NoError(t, err)

	assert.Equal(t, "survey-exports", res.Bucket)
	assert.Equal(t, 2, res.Count)
	assert.True(t, strings.HasPrefix(res.Key, "exports/trainees/2026/10/16/"), res.Key)
	assert.True(t, strings.HasSuffix(res.Key, ".json"))

	require.Len(t, fake.inputs, 1)
	assert.Equal(t, res.Key, aws.ToString(fake.inputs[0].Key))
	assert.Equal(t, "application/json", aws.ToString(fake.inputs[0].ContentType))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(fake.bodies[0], &snap))
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, "Roe", snap.Trainees[1].Lastname)
}

func TestExport_EmptyListWritesEmptyArray(t *testing.T) {
	fake := &fakeS3{}
	exp := NewS3Exporter(fake, "b", "custom")

	res, err := exp.Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.True(t, strings.HasPrefix(res.Key, "custom/"))
	assert.Contains(t, string(fake.bodies[0]), `"trainees": []`)
}

func TestExport_PutFailure(t *testing.T) {
	exp := NewS3Exporter(&fakeS3{err: errors.New("access denied")}, "b", "")

	_, err := exp.Export(context.Background(), nil)
	assert.ErrorContains(t, err, "access denied")
}
