// Package opensearch adapts the OpenSearch cluster backing the structured
// patent catalog: free-text boolean search over catalog fields with exact
// number/status filtering and result highlighting.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// ClientConfig holds the OpenSearch cluster parameters.
type ClientConfig struct {
	Addresses          []string
	User               string
	Password           string
	InsecureSkipVerify bool
}

// Client wraps one OpenSearch connection shared by the catalog adapter.
type Client struct {
	os     *opensearchgo.Client
	logger logging.Logger
}

// NewClient builds the OpenSearch client and verifies the cluster responds.
func NewClient(cfg ClientConfig, logger logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "opensearch addresses are required")
	}

	osClient, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.User,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build opensearch client")
	}

	client := &Client{os: osClient, logger: logger}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}

	logger.Info("opensearch connected", logging.Any("addresses", cfg.Addresses))
	return client, nil
}

// Raw returns the underlying opensearch-go client.
func (c *Client) Raw() *opensearchgo.Client { return c.os }

// Ping verifies the cluster responds.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.os.Ping(c.os.Ping.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "opensearch ping failed")
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Newf(errors.ErrCodeServiceUnavailable, "opensearch ping returned %s", res.Status())
	}
	return nil
}
