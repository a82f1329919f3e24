package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// BucketClient fetches song audio from the object store over HTTP.
type BucketClient struct {
	baseURL string
	client  *http.Client
}

func NewBucketClient(baseURL string) *BucketClient {
	return &BucketClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Download fetches the object at key and writes it to localPath.
func (c *BucketClient) Download(ctx context.Context, key, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+key, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bucket returned status code %d for %s", resp.StatusCode, key)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return nil
}
