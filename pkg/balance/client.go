// Package balance looks up address balances on an Esplora-compatible block
// explorer. It sits outside the address/key codec: a failed lookup means the
// balance is unknown, never that the address is invalid.
package balance

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/imroc/req"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/grendel/keyscope/pkg/crypto"
)

// DefaultTimeout bounds a single lookup. There are no retries.
const DefaultTimeout = 15 * time.Second

// ErrLookupUnavailable covers transport errors, timeouts, non-2xx replies and
// malformed bodies
var ErrLookupUnavailable = errors.New("balance lookup unavailable")

// DefaultEndpoints are the public Blockstream Esplora instances
var DefaultEndpoints = map[crypto.Network]string{
	crypto.Mainnet: "https://blockstream.info/api",
	crypto.Testnet: "https://blockstream.info/testnet/api",
}

// Balance is an address balance in satoshis. Total is Confirmed plus Pending.
type Balance struct {
	Confirmed int64
	Pending   int64
	Total     int64
}

// Client fetches balances. It is safe for concurrent use.
type Client struct {
	endpoints map[crypto.Network]string
	timeout   time.Duration
	logger    *zap.Logger
	http      *req.Req
}

// Option configures a Client
type Option func(*Client)

// WithEndpoint overrides the explorer base URL for one network
func WithEndpoint(net crypto.Network, baseURL string) Option {
	return func(c *Client) {
		c.endpoints[net] = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client using DefaultEndpoints unless overridden
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoints: make(map[crypto.Network]string, len(DefaultEndpoints)),
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
	}
	for net, url := range DefaultEndpoints {
		c.endpoints[net] = url
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = req.New()
	c.http.SetClient(&http.Client{Timeout: c.timeout})
	return c
}

// Fetch returns the confirmed and mempool balance of address on net. The address
// is validated first; an invalid one is a crypto.ErrFormat and no request is sent.
func (c *Client) Fetch(ctx context.Context, address string, net crypto.Network) (Balance, error) {
	if !crypto.IsValidAddressOn(address, net) {
		return Balance{}, errors.Wrapf(crypto.ErrFormat, "%q is not a %s address", address, net)
	}
	base, ok := c.endpoints[net]
	if !ok {
		return Balance{}, errors.Wrapf(ErrLookupUnavailable, "no explorer configured for %s", net)
	}

	url := base + "/address/" + address
	log := c.logger.With(zap.String("address", address), zap.Stringer("network", net))
	log.Debug("requesting address stats", zap.String("url", url))

	start := time.Now()
	resp, err := c.http.Get(url, ctx, req.Header{"Accept": "application/json"})
	if err != nil {
		log.Warn("balance lookup failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return Balance{}, errors.Wrap(ErrLookupUnavailable, err.Error())
	}

	status := resp.Response().StatusCode
	if status < 200 || status > 299 {
		log.Warn("explorer returned error status", zap.Int("status", status))
		return Balance{}, errors.Wrapf(ErrLookupUnavailable, "explorer returned status %d", status)
	}

	bal, err := parseAddressStats(resp.Bytes())
	if err != nil {
		log.Warn("malformed explorer response", zap.Error(err))
		return Balance{}, err
	}
	log.Debug("balance lookup complete", zap.Int64("total", bal.Total), zap.Duration("elapsed", time.Since(start)))
	return bal, nil
}

var statFields = [...]string{
	"chain_stats.funded_txo_sum",
	"chain_stats.spent_txo_sum",
	"mempool_stats.funded_txo_sum",
	"mempool_stats.spent_txo_sum",
}

// parseAddressStats reads the funded/spent sums of an Esplora /address reply
func parseAddressStats(body []byte) (Balance, error) {
	if !gjson.ValidBytes(body) {
		return Balance{}, errors.Wrap(ErrLookupUnavailable, "response is not JSON")
	}

	doc := gjson.ParseBytes(body)
	var sums [len(statFields)]int64
	for i, path := range statFields {
		v := doc.Get(path)
		if !v.Exists() || v.Type != gjson.Number {
			return Balance{}, errors.Wrapf(ErrLookupUnavailable, "response is missing %s", path)
		}
		sums[i] = v.Int()
	}

	confirmed := sums[0] - sums[1]
	pending := sums[2] - sums[3]
	return Balance{Confirmed: confirmed, Pending: pending, Total: confirmed + pending}, nil
}
