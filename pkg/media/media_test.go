package media

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResolver(t *testing.T) {
	r := NewStaticResolver("https://cdn.example.com/media/")
	ctx := context.Background()

	u, err := r.URL(ctx, "products/mug.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/products/mug.png", u)

	u, err = r.URL(ctx, "/products/mug.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/products/mug.png", u)

	u, err = r.URL(ctx, "https://elsewhere.example.com/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://elsewhere.example.com/x.png", u)

	u, err = r.URL(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestS3ResolverRequiresBucketAndKeys(t *testing.T) {
	_, err := NewS3Resolver(context.Background(), S3Config{AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)

	_, err = NewS3Resolver(context.Background(), S3Config{Bucket: "media"})
	assert.Error(t, err)
}

func TestS3ResolverPresignsLocally(t *testing.T) {
	r, err := NewS3Resolver(context.Background(), S3Config{
		Endpoint:     "http://localhost:9000",
		Bucket:       "media",
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	u, err := r.URL(context.Background(), "products/mug.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:9000/media/products/mug.png?"))
	assert.Contains(t, u, "X-Amz-Signature=")
}
