package pricing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

const resolvedView = "v_products_resolved"

// Forwarded carries the caller's own Authorization header to the query layer
// so that row-level security is evaluated as the caller. The proxy never
// substitutes a service credential.
type Forwarded struct {
	authorization string
}

// ForwardFrom captures the Authorization header of r.
func ForwardFrom(r *http.Request) (Forwarded, error) {
	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		return Forwarded{}, httpx.Wrap(httpx.ErrUnauthorized, "Missing Authorization header", nil)
	}
	return Forwarded{authorization: header}, nil
}

// UpstreamObserver records proxy call outcomes. *observability.Metrics satisfies it.
type UpstreamObserver interface {
	ObserveUpstream(status int, elapsed time.Duration)
}

// Proxy reads the resolved price view from the PostgREST endpoint.
type Proxy struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	observer   UpstreamObserver
}

// NewProxy constructs a proxy. baseURL is the project URL without /rest/v1.
func NewProxy(baseURL, anonKey string, timeout time.Duration, observer UpstreamObserver) *Proxy {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Proxy{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
		observer:   observer,
	}
}

func (p *Proxy) checkConfig() error {
	var missing []string
	if p.baseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if p.anonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return httpx.Wrap(httpx.ErrMisconfigured, "Backend env vars missing: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// ResolvedProducts returns the raw JSON rows of the resolved price view. A
// non-2xx answer comes back as *httpx.UpstreamError carrying status and body.
func (p *Proxy) ResolvedProducts(ctx context.Context, fwd Forwarded) ([]byte, error) {
	if err := p.checkConfig(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", p.baseURL, resolvedView, url.Values{"select": {"*"}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fwd.authorization)
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.observe(0, start)
		return nil, &httpx.UpstreamError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	p.observe(resp.StatusCode, start)
	if err != nil {
		return nil, &httpx.UpstreamError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpx.UpstreamError{Status: resp.StatusCode, Body: body}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("[]"), nil
	}
	return body, nil
}

func (p *Proxy) observe(status int, start time.Time) {
	if p.observer != nil {
		p.observer.ObserveUpstream(status, time.Since(start))
	}
}
