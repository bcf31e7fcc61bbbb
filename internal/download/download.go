// Package download fetches installer artifacts over HTTP with coarse
// progress reporting.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Sentinel errors for download operations.
var (
	ErrBadStatus   = errors.New("download: unexpected HTTP status")
	ErrInterrupted = errors.New("download: transfer interrupted")
)

// Client is the HTTP client used for fetches. Overridable for tests.
var Client = &http.Client{Timeout: 30 * time.Minute}

// progressStep is the coarse reporting granularity in percent.
const progressStep = 5

// Fetch downloads url into dest. When the response length is known,
// progress is reported in 5% increments. The partially written file is
// removed on any failure.
func Fetch(ctx context.Context, url, dest string, progress func(percent int)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download: building request: %w", err)
	}

	resp, err := Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInterrupted, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	out, err := os.Create(dest) // #nosec G304 -- dest lives in a private temp dir
	if err != nil {
		return fmt.Errorf("download: creating %s: %w", dest, err)
	}

	err = copyWithProgress(out, resp.Body, resp.ContentLength, progress)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

// copyWithProgress streams src into dst, invoking progress at each new
// multiple of progressStep percent. An unknown total disables reporting.
func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress func(percent int)) error {
	buf := make([]byte, 32*1024)
	var written int64
	lastReported := -1

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("%w: %v", ErrInterrupted, writeErr)
			}
			written += int64(n)

			if total > 0 && progress != nil {
				percent := int(written * 100 / total)
				step := percent - percent%progressStep
				if step > lastReported {
					lastReported = step
					progress(step)
				}
			}
		}
		if readErr == io.EOF {
			if total > 0 && written < total {
				return fmt.Errorf("%w: got %d of %d bytes", ErrInterrupted, written, total)
			}
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("%w: %v", ErrInterrupted, readErr)
		}
	}
}
