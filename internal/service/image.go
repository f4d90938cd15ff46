package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
}

// ImageService stores recipe images submitted as base64 data URIs in
// an S3 bucket and returns their public URLs.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// StoreRecipeImage decodes a data URI of the form
// "data:image/png;base64,...." and uploads the payload to S3.
func (s *ImageService) StoreRecipeImage(ctx context.Context, image string) (string, error) {
	mediaType, data, err := decodeDataURI(image)
	if err != nil {
		return "", err
	}
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return "", fmt.Errorf("unsupported image media type %q", mediaType)
	}

	fileName := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mediaType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] Stored recipe image at %s", publicURL)
	return publicURL, nil
}

func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("image is not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	mediaType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return "", nil, fmt.Errorf("data URI is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return mediaType, data, nil
}
