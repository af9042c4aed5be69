package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/labelspy/labelspy-backend/pkg/config"
	"github.com/labelspy/labelspy-backend/pkg/logger"
)

// Client wraps the shared Firestore connection.
type Client struct {
	fs *firestore.Client
}

// New boots a Firestore client using the provided configuration. When a
// service-account key file is configured it is used explicitly; otherwise the
// client falls back to Application Default Credentials, which covers both
// GOOGLE_APPLICATION_CREDENTIALS and ambient cloud environments.
func New(ctx context.Context, cfg config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("gcp project id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	fs, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening firestore connection: %w", err)
	}

	if logg != nil {
		ctx = logg.WithField(ctx, "project_id", cfg.ProjectID)
		logg.Info(ctx, "firestore connection established")
	}

	return &Client{fs: fs}, nil
}

// Firestore returns the underlying Firestore connection.
func (c *Client) Firestore() *firestore.Client {
	return c.fs
}

// Close releases the underlying gRPC resources.
func (c *Client) Close() error {
	if c == nil || c.fs == nil {
		return nil
	}
	return c.fs.Close()
}
