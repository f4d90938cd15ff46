package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	mediaType, data, err := decodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	assert.Equal(t, payload, data)
}

func TestDecodeDataURIErrors(t *testing.T) {
	cases := []string{
		"http://example.com/image.png",
		"data:image/png",
		"data:image/png;utf8,abc",
		"data:image/png;base64,%%%",
	}
	for _, uri := range cases {
		_, _, err := decodeDataURI(uri)
		assert.Error(t, err, uri)
	}
}

func TestStoreImagePassthrough(t *testing.T) {
	db := setupDB(t)
	svc := NewRecipeService(db, nil)

	// Without a configured store, plain URLs and data URIs are kept
	// as-is.
	url, err := svc.storeImage(context.Background(), "http://example.com/image.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/image.jpg", url)
}
