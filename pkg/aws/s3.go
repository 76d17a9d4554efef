package aws

import (
	"fmt"
	"time"

	"github.com/gofiber/storage/s3/v2"

	"storefront/pkg/config"
)

var appConfig = config.Read()

// Bucket wraps one named S3 bucket. The catalog uses two: categories and products.
type Bucket struct {
	name    string
	storage *s3.Storage
}

func NewBucket(name string) *Bucket {
	storage := s3.New(s3.Config{
		Endpoint: appConfig.AWSEndpoint,
		Bucket:   name,
		Region:   appConfig.AWSDefaultRegion,
		Credentials: s3.Credentials{
			AccessKey:       appConfig.AWSAccessKey,
			SecretAccessKey: appConfig.AWSSecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: time.Second * 10,
		Reset:          false,
	})

	return &Bucket{
		name:    name,
		storage: storage,
	}
}

func (b *Bucket) Upload(key string, data []byte) error {
	return b.storage.Set(key, data, time.Hour*100)
}

func (b *Bucket) Download(key string) ([]byte, error) {
	return b.storage.Get(key)
}

func (b *Bucket) Delete(key string) error {
	return b.storage.Delete(key)
}

// Remove deletes a batch of keys, returning the first failure after trying all.
func (b *Bucket) Remove(keys []string) error {
	var firstErr error
	for _, key := range keys {
		if err := b.storage.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublicURL returns the browser-facing URL for a stored key.
func (b *Bucket) PublicURL(key string) string {
	if appConfig.AWSEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", appConfig.AWSEndpoint, b.name, key)
	}

	if appConfig.AWSDefaultRegion != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.name, appConfig.AWSDefaultRegion, key)
	}

	return key
}
