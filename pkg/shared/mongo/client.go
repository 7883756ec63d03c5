// Package mongo provides shared MongoDB connection management
package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultDB          = "lrucache"
	defaultTimeout     = 10 * time.Second
	defaultPingTimeout = 3 * time.Second
)

// Client connects to Mongo lazily, on the first call to DB, and then hands out
// the same database to every caller.
type Client struct {
	url    string
	dbName string
	db     *mongo.Database
	mu     sync.Mutex

	timeout     time.Duration
	pingTimeout time.Duration
	direct      bool
}

// NewClient creates a new MongoDB client with default settings
func NewClient(url string) *Client {
	return &Client{
		url:         url,
		dbName:      DefaultDB,
		timeout:     defaultTimeout,
		pingTimeout: defaultPingTimeout,
	}
}

// WithDatabase sets the name of the database returned by DB.
func (c *Client) WithDatabase(name string) *Client {
	c.dbName = name
	return c
}

// WithTimeout sets the operation timeout
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithDirect enables direct connection, for single-node replica sets.
func (c *Client) WithDirect(direct bool) *Client {
	c.direct = direct
	return c
}

// DB returns the database, connecting and pinging the server if this is the
// first call.
func (c *Client) DB(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	opt := options.Client().ApplyURI(c.url).SetTimeout(c.timeout)
	if c.direct {
		opt = opt.SetDirect(true)
	}

	client, err := mongo.Connect(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("Ping: %w", err)
	}

	c.db = client.Database(c.dbName)
	return c.db, nil
}

// Close disconnects, if connected. The Client may connect again afterwards.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	err := c.db.Client().Disconnect(ctx)
	c.db = nil
	return err
}
