// Package gcsstore keeps snapshots as objects in a Google Cloud Storage bucket.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"summarizer-session-be/pkg/snapshot"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// New opens a client. An empty credentials file falls back to application
// default credentials. Extra options go to the client as they are, e.g. an
// emulator endpoint.
func New(ctx context.Context, bucket, prefix, credentialsFile string, extra ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("gcs snapshot store needs a bucket")
	}
	opts := append([]option.ClientOption{}, extra...)
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return NewWithClient(client, bucket, prefix), nil
}

func NewWithClient(client *storage.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) object(handle string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + handle)
}

// Put uploads with a does-not-exist precondition so concurrent writers cannot
// replace each other's blob.
func (s *Store) Put(ctx context.Context, handle string, blob []byte) error {
	if err := snapshot.ValidateHandle(handle); err != nil {
		return err
	}

	w := s.object(handle).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.Metadata = map[string]string{"sha256": snapshot.Digest(blob)}

	if _, err := w.Write(blob); err != nil {
		w.Close()
		return fmt.Errorf("upload snapshot %s: %w", handle, err)
	}
	err := w.Close()
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusPreconditionFailed {
		return fmt.Errorf("upload snapshot %s: %w", handle, err)
	}

	existing, err := s.Get(ctx, handle)
	if err != nil {
		return err
	}
	return snapshot.CompareExisting(handle, existing, blob)
}

func (s *Store) Get(ctx context.Context, handle string) ([]byte, error) {
	if err := snapshot.ValidateHandle(handle); err != nil {
		return nil, err
	}
	r, err := s.object(handle).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, snapshot.NotFound(handle)
		}
		return nil, fmt.Errorf("open snapshot %s: %w", handle, err)
	}
	defer r.Close()

	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", handle, err)
	}
	return blob, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
