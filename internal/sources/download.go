package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxDownload caps remote bodies; monthly extracts are a few MB at most.
var maxDownload int64 = 64 << 20

// ErrTooLarge is returned for bodies over the download cap.
var ErrTooLarge = errors.New("response body too large")

// Download GETs url and returns the body. Non-2xx statuses are errors.
func Download(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > maxDownload {
		return nil, fmt.Errorf("read %s: %w (limit %d bytes)", url, ErrTooLarge, maxDownload)
	}
	return body, nil
}
