// Package fetcher downloads database files from external URLs (e.g. Google
// Drive) when they are absent locally. Large-file hosts answer the first
// request for a big file with an HTML warning page instead of file bytes;
// the fetcher handles the confirmation-token exchange needed to get past it.
package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/giygas/drugdb-prep/interfaces"
	"github.com/giygas/drugdb-prep/logging"
	"github.com/giygas/drugdb-prep/metrics"
	"github.com/juju/ratelimit"
)

// downloadChunkSize is the copy buffer size for streaming payloads to disk.
const downloadChunkSize = 32 * 1024

// warningCookiePrefix marks the anti-abuse confirmation cookie set by Google
// Drive for files too large to virus-scan.
const warningCookiePrefix = "download_warning"

// Compile-time check to ensure Fetcher implements the Fetcher interface
var _ interfaces.Fetcher = (*Fetcher)(nil)

// Fetcher downloads files over HTTP, optionally throttled to a byte rate.
type Fetcher struct {
	client *http.Client
	bucket *ratelimit.Bucket
}

// New creates a Fetcher with a cookie-keeping client. rateLimit is in bytes
// per second; 0 disables throttling.
func New(timeout time.Duration, rateLimit int64) *Fetcher {
	jar, _ := cookiejar.New(nil)
	return NewWithClient(&http.Client{Timeout: timeout, Jar: jar}, rateLimit)
}

// NewWithClient creates a Fetcher around an existing client. Used by tests
// to inject a fake transport.
func NewWithClient(client *http.Client, rateLimit int64) *Fetcher {
	f := &Fetcher{client: client}
	if rateLimit > 0 {
		f.bucket = ratelimit.NewBucketWithRate(float64(rateLimit), rateLimit)
	}
	return f
}

// EnsureFile makes sure target exists, downloading it from url when absent.
// An existing target issues no network activity. An empty url logs a warning
// and returns nil: missing optional databases are tolerated. Download errors
// are logged and returned, but callers treat them as soft failures.
func (f *Fetcher) EnsureFile(target, url string) error {
	if info, err := os.Stat(target); err == nil {
		logging.Info("File already present, skipping download",
			"file", filepath.Base(target),
			"size_mb", fmt.Sprintf("%.1f", float64(info.Size())/(1024*1024)))
		return nil
	}

	if url == "" {
		logging.Warn("No URL provided, skipping download", "file", filepath.Base(target))
		return nil
	}

	if err := f.download(url, target); err != nil {
		metrics.DownloadFailures.Inc()
		logging.Error("Download failed", "url", url, "target", target, "error", err)
		return err
	}

	return nil
}

// download fetches url into target, handling the Drive confirmation flow.
func (f *Fetcher) download(rawURL, target string) error {
	downloadURL := rawURL
	if fileID := ExtractDriveFileID(rawURL); fileID != "" {
		downloadURL = BuildDriveDownloadURL(fileID)
	}

	response, err := f.client.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", downloadURL, err)
	}

	// A warning cookie means we got the interstitial page, not the file.
	// Retry once with the confirmation token; no further retries.
	if token := warningToken(response); token != "" {
		drainAndClose(response)

		confirmURL, err := withConfirmParam(downloadURL, token)
		if err != nil {
			return err
		}
		response, err = f.client.Get(confirmURL)
		if err != nil {
			return fmt.Errorf("failed to confirm download %s: %w", downloadURL, err)
		}
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s for %s", response.Status, downloadURL)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	outFile, err := os.Create(filepath.Clean(target))
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer func() {
		if err := outFile.Close(); err != nil {
			logging.Warn("Failed to close output file", "error", err)
		}
	}()

	var body io.Reader = response.Body
	if f.bucket != nil {
		body = ratelimit.Reader(response.Body, f.bucket)
	}

	written, err := io.CopyBuffer(outFile, body, make([]byte, downloadChunkSize))
	if err != nil {
		return fmt.Errorf("failed to write to file %s: %w", target, err)
	}
	metrics.DownloadBytes.Add(float64(written))

	logging.Info("Downloaded file",
		"file", filepath.Base(target),
		"size_mb", fmt.Sprintf("%.1f", float64(written)/(1024*1024)))

	return nil
}

// warningToken returns the confirmation token from a download_warning cookie,
// or "" when the response carries the actual file.
func warningToken(response *http.Response) string {
	for _, cookie := range response.Cookies() {
		if strings.HasPrefix(cookie.Name, warningCookiePrefix) {
			return cookie.Value
		}
	}
	return ""
}

// withConfirmParam adds the confirm=<token> query parameter to rawURL.
func withConfirmParam(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse download URL %s: %w", rawURL, err)
	}
	query := u.Query()
	query.Set("confirm", token)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func drainAndClose(response *http.Response) {
	_, _ = io.Copy(io.Discard, response.Body)
	if err := response.Body.Close(); err != nil {
		logging.Warn("Failed to close response body", "error", err)
	}
}
