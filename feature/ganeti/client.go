package ganeti

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"ganeti-netbox-sync/core/config"
	"ganeti-netbox-sync/core/reconcile"

	"go.uber.org/zap"
)

// InstancesPath is the bulk instance listing of RAPI version 2.
const InstancesPath = "/2/instances?bulk=1"

// Client reads the instance list of one Ganeti cluster.
type Client struct {
	baseURL *url.URL
	creds   Credentials
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a RAPI client for the cluster API at api.
func NewClient(api string, cfg config.GanetiConfig, creds Credentials, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(api)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ganeti api url %q", api)
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}
	if creds.CACert != "" {
		pem, err := os.ReadFile(creds.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca bundle %s: %w", creds.CACert, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", creds.CACert)
		}
		tlsConfig.RootCAs = pool
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	return &Client{
		baseURL: base,
		creds:   creds,
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second, Transport: transport},
		logger:  logger,
	}, nil
}

// Instances fetches the bulk instance list. Any transport or status failure
// wraps reconcile.ErrSourceUnavailable.
func (c *Client) Instances(ctx context.Context) ([]reconcile.SourceRecord, error) {
	ref, _ := url.Parse(InstancesPath)
	endpoint := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.creds.User != "" {
		req.SetBasicAuth(c.creds.User, c.creds.Password)
	}

	c.logger.Debug("Fetching instances", zap.String("url", endpoint.String()))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", reconcile.ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: can't access ganeti api: status %d", reconcile.ErrSourceUnavailable, resp.StatusCode)
	}

	return Parse(body, c.logger)
}
