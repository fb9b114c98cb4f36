package transport

import (
	"net/http"
	"net/url"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TransportFactory = (*Factory)(nil)

// Factory selects a transport from the scheme of a remote URL.
type Factory struct {
	client *http.Client
}

// NewFactory creates a Factory. A nil client selects http.DefaultClient.
func NewFactory(client *http.Client) *Factory {
	return &Factory{client: client}
}

// New returns the transport for rawURL.
func (f *Factory) New(rawURL string, timeout time.Duration) (ports.Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid remote url"), "url", rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTP(u, timeout, f.client), nil
	case "file":
		return NewDir(u.Path, timeout), nil
	case "s3":
		return NewS3FromURL(u, timeout)
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedScheme, "select transport"), "scheme", u.Scheme)
	}
}
