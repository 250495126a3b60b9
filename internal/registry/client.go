// Package registry implements C1: a thin HTTPS client over the two
// registry endpoints spec.md §4.1 describes. It performs no caching of its
// own (that's internal/cache, C2) and no retries — the install aborts on
// the first unrecoverable error, per spec.md §4.1.
package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/diag"
	"github.com/huskpm/husk/internal/huskerr"
)

// BaseURL is the compile-time registry root, per spec.md §6.
const BaseURL = "https://registry.npmjs.org"

// DefaultTimeout is applied to every registry request, per spec.md §5.
const DefaultTimeout = 30 * time.Second

// Packument is the per-package version index document, the relevant
// fields of the registry's GET /{name} response.
type Packument struct {
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}

// PackageMetadata is the per-version document, spec.md §3.
type PackageMetadata struct {
	Version      string            `json:"version"`
	TarballURL   string            `json:"tarballUrl"`
	Integrity    string            `json:"integrity"`
	Dependencies map[string]string `json:"dependencies"`
}

type versionDoc struct {
	Version string `json:"version"`
	Dist    struct {
		Tarball   string `json:"tarball"`
		Integrity string `json:"integrity"`
	} `json:"dist"`
	Dependencies map[string]string `json:"dependencies"`
}

// Client fetches registry documents over HTTPS.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client against baseURL, with the default 30s timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewDefault constructs a Client against the public npm registry.
func NewDefault() *Client {
	return New(BaseURL)
}

// packagePath escapes name as one or two path segments (scope, then base,
// for scoped names) so the URL matches what the real registry expects.
func (c *Client) packagePath(name string) string {
	if strings.HasPrefix(name, "@") && strings.Contains(name, "/") {
		idx := strings.Index(name, "/")
		scope, base := name[:idx], name[idx+1:]
		return url.PathEscape(scope) + "/" + url.PathEscape(base)
	}
	return url.PathEscape(name)
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	diag.Fetch(u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return huskerr.New(huskerr.KindTransport, errors.Wrapf(err, "failed to build request for %s", u))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return huskerr.New(huskerr.KindTransport, &huskerr.TransportError{URL: u, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return huskerr.New(huskerr.KindTransport, &huskerr.TransportError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return huskerr.New(huskerr.KindTransport, errors.Wrapf(err, "failed to decode response from %s", u))
	}
	return nil
}

// Packument fetches GET {base}/{name}.
func (c *Client) Packument(ctx context.Context, name string) (*Packument, error) {
	u := c.baseURL + "/" + c.packagePath(name)
	var doc Packument
	if err := c.getJSON(ctx, u, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// VersionMetadata fetches GET {base}/{name}/{exactVersion}.
func (c *Client) VersionMetadata(ctx context.Context, name, exactVersion string) (*PackageMetadata, error) {
	u := c.baseURL + "/" + c.packagePath(name) + "/" + url.PathEscape(exactVersion)
	var doc versionDoc
	if err := c.getJSON(ctx, u, &doc); err != nil {
		return nil, err
	}
	return &PackageMetadata{
		Version:      doc.Version,
		TarballURL:   doc.Dist.Tarball,
		Integrity:    doc.Dist.Integrity,
		Dependencies: doc.Dependencies,
	}, nil
}

// FetchTarball downloads raw tarball bytes from url, as invoked by the
// installer (spec.md §4.7 step 4).
func (c *Client) FetchTarball(ctx context.Context, tarballURL string) ([]byte, error) {
	diag.Fetch(tarballURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tarballURL, nil)
	if err != nil {
		return nil, huskerr.New(huskerr.KindTransport, errors.Wrapf(err, "failed to build request for %s", tarballURL))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, huskerr.New(huskerr.KindTransport, &huskerr.TransportError{URL: tarballURL, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, huskerr.New(huskerr.KindTransport, &huskerr.TransportError{
			URL:        tarballURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, huskerr.New(huskerr.KindTransport, errors.Wrapf(err, "failed to read tarball body from %s", tarballURL))
	}
	return body, nil
}
