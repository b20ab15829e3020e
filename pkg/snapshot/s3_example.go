//go:build s3example
// +build s3example

// This file provides an example S3Store implementation.
// It is excluded from regular builds so the AWS SDK stays optional.
//
// To use this in your project, copy this file and add the AWS SDK:
//   go get github.com/aws/aws-sdk-go-v2
//   go get github.com/aws/aws-sdk-go-v2/config
//   go get github.com/aws/aws-sdk-go-v2/service/s3

package snapshot

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store stores snapshots in AWS S3, one object per capture, with the
// page URL and content hash carried as object metadata.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	s3Client := s3.NewFromConfig(cfg)
//	store := snapshot.NewS3Store(s3Client, "my-bucket", "snapshots/")
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates an S3 snapshot store.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: Key prefix for snapshots (e.g., "snapshots/")
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Save uploads the snapshot HTML to S3.
func (s *S3Store) Save(snap *Snapshot) error {
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(snap.ID)),
		Body:        strings.NewReader(snap.HTML),
		ContentType: aws.String("text/html; charset=utf-8"),
		Metadata: map[string]string{
			"page-url":  snap.PageURL,
			"html-hash": snap.HTMLHash,
			"taken-at":  snap.TakenAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 snapshot upload failed: %w", err)
	}
	return nil
}

// Load retrieves a snapshot from S3.
func (s *S3Store) Load(id string) (*Snapshot, error) {
	result, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, ErrNotFound
	}
	defer result.Body.Close()

	html, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{ID: id, HTML: string(html)}
	snap.PageURL = result.Metadata["page-url"]
	snap.HTMLHash = result.Metadata["html-hash"]
	if at, err := time.Parse(time.RFC3339, result.Metadata["taken-at"]); err == nil {
		snap.TakenAt = at
	}
	return snap, nil
}

// List returns the stored snapshots, newest first. Each entry costs a
// HeadObject for its metadata; fine for a harness, not for a large bucket.
func (s *S3Store) List() ([]*Snapshot, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var out []*Snapshot
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(*obj.Key, s.prefix), ".html")

			snap := &Snapshot{ID: id}
			if obj.LastModified != nil {
				snap.TakenAt = *obj.LastModified
			}
			head, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(*obj.Key),
			})
			if err == nil {
				snap.PageURL = head.Metadata["page-url"]
				snap.HTMLHash = head.Metadata["html-hash"]
				if at, err := time.Parse(time.RFC3339, head.Metadata["taken-at"]); err == nil {
					snap.TakenAt = at
				}
			}
			out = append(out, snap)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}

func (s *S3Store) key(id string) string {
	return s.prefix + id + ".html"
}
