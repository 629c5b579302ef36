package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURLWithCDNBase(t *testing.T) {
	store := &S3Store{bucket: "punkontrol-media", region: "us-east-1", baseURL: "https://cdn.punkontrol.example/"}
	assert.Equal(t, "https://cdn.punkontrol.example/artworks/u1/a1.jpg",
		store.PublicURL("artworks/u1/a1.jpg"))
}

func TestPublicURLFallsBackToBucketEndpoint(t *testing.T) {
	store := &S3Store{bucket: "punkontrol-media", region: "us-east-1"}
	assert.Equal(t, "https://punkontrol-media.s3.us-east-1.amazonaws.com/artworks/u1/a1.jpg",
		store.PublicURL("artworks/u1/a1.jpg"))
}
