// Package milvus adapts the Milvus vector database to the ingestion and
// retrieval contracts: it owns the unit collection schema, the write path
// (replace-by-source) and both read paths (ANN search and the exact-match
// doc_meta scan).
package milvus

import (
	"context"
	"sync"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// newMilvusClient is swapped in tests.
var newMilvusClient = client.NewClient

// ClientConfig holds the Milvus connection parameters.
type ClientConfig struct {
	Address        string
	Username       string
	Password       string
	DBName         string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

// Client manages one Milvus connection shared by the index adapters.
type Client struct {
	mc     client.Client
	config ClientConfig
	logger logging.Logger
	mu     sync.RWMutex
}

// NewClient connects to Milvus and verifies the connection.
func NewClient(cfg ClientConfig, logger logging.Logger) (*Client, error) {
	if cfg.Address == "" {
		return nil, errors.New(errors.ErrCodeValidation, "milvus address is required")
	}
	if cfg.DBName == "" {
		cfg.DBName = "default"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	mc, err := newMilvusClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		DialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                60 * time.Second,
				Timeout:             20 * time.Second,
				PermitWithoutStream: true,
			}),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to milvus")
	}

	logger.Info("milvus connected", logging.String("address", cfg.Address))
	return &Client{mc: mc, config: cfg, logger: logger}, nil
}

// Raw returns the underlying SDK client.
func (c *Client) Raw() client.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mc
}

// CheckHealth verifies the connection is alive.
func (c *Client) CheckHealth(ctx context.Context) error {
	if _, err := c.Raw().CheckHealth(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "milvus health check failed")
	}
	return nil
}

// Close releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mc != nil {
		c.mc.Close()
	}
	c.logger.Info("milvus client closed")
	return nil
}
