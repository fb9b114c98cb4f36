package transport

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Transport = (*HTTP)(nil)

// HTTP fetches files with GET requests relative to a base URL.
type HTTP struct {
	client  *http.Client
	base    *url.URL
	timeout time.Duration
}

// NewHTTP creates an HTTP transport. A nil client selects http.DefaultClient.
func NewHTTP(base *url.URL, timeout time.Duration, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client, base: base, timeout: timeout}
}

// Fetch downloads base/req.FileName into destDir.
func (t *HTTP) Fetch(ctx context.Context, req domain.FetchRequest, destDir string, progress ports.ProgressFunc) (int64, error) {
	tctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	target := t.base.JoinPath(req.FileName)
	httpReq, err := http.NewRequestWithContext(tctx, http.MethodGet, target.String(), http.NoBody)
	if err != nil {
		return 0, classify(ctx, tctx, err)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return 0, classify(ctx, tctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := zerr.With(zerr.Wrap(domain.ErrTransferFailed, "unexpected response status"), "status", resp.StatusCode)
		return 0, zerr.With(err, "url", target.String())
	}

	total := req.Size
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}

	n, err := download(tctx, resp.Body, total, destDir, req.FileName, progress)
	return n, classify(ctx, tctx, err)
}
