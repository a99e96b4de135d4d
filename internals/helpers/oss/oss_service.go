package oss

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSService signs read URLs for stored object keys. Uploads happen outside
// this service; responses only need time-limited GET links.
type OSSService struct {
	bucket *oss.Bucket
}

// NewOSSServiceFromEnv builds the service from ALI_OSS_* env vars.
// Returns nil (and logs) when the env is incomplete so callers can degrade
// to raw keys instead of failing the whole response.
func NewOSSServiceFromEnv() *OSSService {
	endpoint := os.Getenv("ALI_OSS_ENDPOINT")
	keyID := os.Getenv("ALI_OSS_ACCESS_KEY")
	keySecret := os.Getenv("ALI_OSS_SECRET_KEY")
	bucketName := os.Getenv("ALI_OSS_BUCKET")

	if endpoint == "" || keyID == "" || keySecret == "" || bucketName == "" {
		log.Println("[OSS] ALI_OSS_* env incomplete, presigning disabled")
		return nil
	}

	cli, err := oss.New(endpoint, keyID, keySecret)
	if err != nil {
		log.Printf("[OSS] init failed: %v", err)
		return nil
	}
	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		log.Printf("[OSS] bucket failed: %v", err)
		return nil
	}
	return &OSSService{bucket: bucket}
}

// PresignGet returns a time-limited GET URL for an object key. A nil
// receiver or empty key yields the key unchanged.
func (s *OSSService) PresignGet(objectKey string, expiry time.Duration) string {
	if s == nil || strings.TrimSpace(objectKey) == "" {
		return objectKey
	}
	url, err := s.bucket.SignURL(objectKey, oss.HTTPGet, int64(expiry.Seconds()))
	if err != nil {
		log.Printf("[OSS] sign %s: %v", objectKey, err)
		return objectKey
	}
	return url
}
