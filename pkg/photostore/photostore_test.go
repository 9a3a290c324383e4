package photostore_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisnap/nutrisnap/pkg/photostore"
)

func TestLocalStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("put get delete round trip", func(t *testing.T) {
		t.Parallel()

		store, err := photostore.NewLocalStore(t.TempDir())
		require.NoError(t, err)

		key, err := store.Put(ctx, 42, []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "photos/42/"))
		assert.True(t, strings.HasSuffix(key, ".jpg"))

		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)

		require.NoError(t, store.Delete(ctx, key))
		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, photostore.ErrNotFound)
	})

	t.Run("png keys carry the png extension", func(t *testing.T) {
		t.Parallel()

		store, err := photostore.NewLocalStore(t.TempDir())
		require.NoError(t, err)

		key, err := store.Put(ctx, 42, []byte{0x89, 0x50}, "image/png")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(key, ".png"))
	})

	t.Run("rejects empty photos", func(t *testing.T) {
		t.Parallel()

		store, err := photostore.NewLocalStore(t.TempDir())
		require.NoError(t, err)
		_, err = store.Put(ctx, 42, nil, "image/jpeg")
		assert.ErrorIs(t, err, photostore.ErrEmptyPhoto)
	})

	t.Run("rejects traversal keys", func(t *testing.T) {
		t.Parallel()

		store, err := photostore.NewLocalStore(t.TempDir())
		require.NoError(t, err)
		_, err = store.Get(ctx, "photos/../../etc/passwd")
		assert.ErrorIs(t, err, photostore.ErrInvalidKey)
		_, err = store.Get(ctx, "secrets/42/x.jpg")
		assert.ErrorIs(t, err, photostore.ErrInvalidKey)
	})

	t.Run("deleting a missing photo is fine", func(t *testing.T) {
		t.Parallel()

		store, err := photostore.NewLocalStore(t.TempDir())
		require.NoError(t, err)
		assert.NoError(t, store.Delete(ctx, "photos/42/gone.jpg"))
	})
}

type mockS3Client struct {
	objects map[string][]byte
	putErr  error
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newStore := func(t *testing.T, client photostore.S3Client) *photostore.S3Store {
		t.Helper()
		store, err := photostore.NewS3Store(ctx,
			photostore.S3Config{Bucket: "photos", Region: "eu-central-1"},
			photostore.WithS3Client(client))
		require.NoError(t, err)
		return store
	}

	t.Run("round trip through the client", func(t *testing.T) {
		t.Parallel()

		client := newMockS3Client()
		store := newStore(t, client)

		key, err := store.Put(ctx, 42, []byte("jpeg-bytes"), "image/jpeg")
		require.NoError(t, err)

		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)

		require.NoError(t, store.Delete(ctx, key))
		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, photostore.ErrNotFound)
	})

	t.Run("backend failure wraps ErrStorageFailure", func(t *testing.T) {
		t.Parallel()

		client := newMockS3Client()
		client.putErr = errors.New("access denied")
		store := newStore(t, client)

		_, err := store.Put(ctx, 42, []byte("x"), "image/jpeg")
		assert.ErrorIs(t, err, photostore.ErrStorageFailure)
	})

	t.Run("requires bucket and region", func(t *testing.T) {
		t.Parallel()

		_, err := photostore.NewS3Store(ctx, photostore.S3Config{})
		assert.Error(t, err)
	})
}

func TestOwnedBy(t *testing.T) {
	t.Parallel()

	assert.True(t, photostore.OwnedBy("photos/42/abc.jpg", 42))
	assert.False(t, photostore.OwnedBy("photos/42/abc.jpg", 7))
	assert.False(t, photostore.OwnedBy("photos/421/abc.jpg", 42))
	assert.False(t, photostore.OwnedBy("uploads/42/abc.jpg", 42))
	assert.False(t, photostore.OwnedBy("", 42))
}
