package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/survey/backend/internal/domain"
)

// PutObjectAPI is the subset of *s3.Client the exporter uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot is the document written to S3.
type Snapshot struct {
	ExportedAt time.Time        `json:"exported_at"`
	Count      int              `json:"count"`
	Trainees   []domain.Trainee `json:"trainees"`
}

// Result describes a completed export.
type Result struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Count  int    `json:"count"`
}

// S3Exporter uploads snapshots under "<prefix>/YYYY/MM/DD/<uuid>.json".
type S3Exporter struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Exporter creates an exporter writing to bucket under prefix.
func NewS3Exporter(client PutObjectAPI, bucket, prefix string) *S3Exporter {
	if prefix == "" {
		prefix = "exports/trainees"
	}
	return &S3Exporter{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Export serializes trainees and uploads them as one JSON object.
func (e *S3Exporter) Export(ctx context.Context, trainees []domain.Trainee) (*Result, error) {
	now := e.now().UTC()
	if trainees == nil {
		trainees = []domain.Trainee{}
	}
	data, err := json.MarshalIndent(Snapshot{ExportedAt: now, Count: len(trainees), Trainees: trainees}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", e.prefix, now.Format("2006/01/02"), uuid.New().String())
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("putting object to S3 bucket %s: %w", e.bucket, err)
	}
	return &Result{Bucket: e.bucket, Key: key, Count: len(trainees)}, nil
}
