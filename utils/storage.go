package utils

import (
	"fmt"
	"time"

	"osvita/config"

	"github.com/go-resty/resty/v2"
)

// PresignedUpload is the storage gateway's answer to a presign request
type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	ExpiresIn int    `json:"expires_in"`
}

// StorageConfigured reports whether an external object-storage gateway
// is set up; without one uploads fall back to local disk.
func StorageConfigured() bool {
	return config.AppConfig.StorageGatewayURL != ""
}

// RequestPresignedUpload asks the storage gateway for a presigned PUT
// URL for the object key.
func RequestPresignedUpload(objectKey, mime string, size int64) (*PresignedUpload, error) {
	client := resty.New().SetTimeout(10 * time.Second)

	var result PresignedUpload
	resp, err := client.R().
		SetHeader("Authorization", "Bearer "+config.AppConfig.StorageAPIKey).
		SetBody(map[string]interface{}{
			"bucket":       config.AppConfig.StorageBucket,
			"key":          objectKey,
			"content_type": mime,
			"size":         size,
		}).
		SetResult(&result).
		Post(config.AppConfig.StorageGatewayURL + "/presign")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("storage gateway returned %d: %s", resp.StatusCode(), resp.String())
	}

	return &result, nil
}

// DeleteStoredObject removes an object from the storage gateway. Errors
// are returned for logging only; the DB row is the source of truth.
func DeleteStoredObject(objectKey string) error {
	client := resty.New().SetTimeout(10 * time.Second)

	resp, err := client.R().
		SetHeader("Authorization", "Bearer "+config.AppConfig.StorageAPIKey).
		Delete(fmt.Sprintf("%s/objects/%s/%s", config.AppConfig.StorageGatewayURL, config.AppConfig.StorageBucket, objectKey))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("storage gateway returned %d", resp.StatusCode())
	}
	return nil
}
