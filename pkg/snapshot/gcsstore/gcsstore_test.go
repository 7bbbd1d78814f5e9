package gcsstore

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"summarizer-session-be/pkg/snapshot"
	"summarizer-session-be/pkg/snapshot/snapshottest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const testBucket = "summarizer-snapshots-test"

// Runs against a GCS emulator (e.g. fake-gcs-server) when
// SNAPSHOT_TEST_GCS_ENDPOINT is set, like http://localhost:4443.
func TestStore_Emulator(t *testing.T) {
	endpoint := os.Getenv("SNAPSHOT_TEST_GCS_ENDPOINT")
	if endpoint == "" {
		t.Skip("SNAPSHOT_TEST_GCS_ENDPOINT not set")
	}
	ctx := context.Background()
	opts := []option.ClientOption{
		option.WithEndpoint(strings.TrimSuffix(endpoint, "/") + "/storage/v1/"),
		option.WithoutAuthentication(),
	}

	setup, err := New(ctx, testBucket, "", "", opts...)
	require.NoError(t, err)
	err = setup.client.Bucket(testBucket).Create(ctx, "test-project", nil)
	var apiErr *googleapi.Error
	if err != nil && !(errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict) {
		require.NoError(t, err)
	}
	require.NoError(t, setup.Close())

	snapshottest.Run(t, func(t *testing.T) snapshot.Store {
		// a fresh prefix per case stands in for an empty bucket
		store, err := New(ctx, testBucket, uuid.NewString()+"/", "", opts...)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	})
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), "", "", "")
	assert.Error(t, err)
}
