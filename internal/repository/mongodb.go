// Package repository provides the drug catalog data access layer.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	drugsCollection    = "drugs"
	packagesCollection = "packages"
)

// mongoSettings tunes the client connection pool and timeouts.
type mongoSettings struct {
	maxPoolSize            uint64
	minPoolSize            uint64
	maxConnIdleTime        time.Duration
	connectTimeout         time.Duration
	serverSelectionTimeout time.Duration
	socketTimeout          time.Duration
	compressors            []string
}

func defaultMongoSettings() mongoSettings {
	return mongoSettings{
		maxPoolSize:            50,
		minPoolSize:            5,
		maxConnIdleTime:        10 * time.Minute,
		connectTimeout:         10 * time.Second,
		serverSelectionTimeout: 5 * time.Second,
		socketTimeout:          30 * time.Second,
		compressors:            []string{"zstd", "snappy", "zlib"},
	}
}

// MongoOption configures NewMongoDB.
type MongoOption func(*mongoSettings)

// WithMaxPoolSize caps the connection pool. Zero keeps the default.
func WithMaxPoolSize(n uint64) MongoOption {
	return func(s *mongoSettings) {
		if n > 0 {
			s.maxPoolSize = n
			s.minPoolSize = min(s.minPoolSize, n)
		}
	}
}

// WithConnectTimeout bounds connecting and server selection. Zero keeps the default.
func WithConnectTimeout(d time.Duration) MongoOption {
	return func(s *mongoSettings) {
		if d > 0 {
			s.connectTimeout = d
			s.serverSelectionTimeout = min(s.serverSelectionTimeout, d)
		}
	}
}

// WithoutCompression disables wire compression.
func WithoutCompression() MongoOption {
	return func(s *mongoSettings) {
		s.compressors = nil
	}
}

// MongoDB holds the catalog database and its collections.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	Drugs    *mongo.Collection
	Packages *mongo.Collection
}

// NewMongoDB connects to uri, verifies the connection and ensures the catalog
// indexes exist.
func NewMongoDB(ctx context.Context, uri, databaseName string, opts ...MongoOption) (*MongoDB, error) {
	settings := defaultMongoSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	ctx, cancel := context.WithTimeout(ctx, settings.connectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(settings.maxPoolSize).
		SetMinPoolSize(settings.minPoolSize).
		SetMaxConnIdleTime(settings.maxConnIdleTime).
		SetConnectTimeout(settings.connectTimeout).
		SetServerSelectionTimeout(settings.serverSelectionTimeout).
		SetSocketTimeout(settings.socketTimeout).
		SetRetryReads(true).
		SetRetryWrites(true)
	if len(settings.compressors) > 0 {
		clientOptions.SetCompressors(settings.compressors)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:   client,
		Database: db,
		Drugs:    db.Collection(drugsCollection),
		Packages: db.Collection(packagesCollection),
	}
	if err := m.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create catalog indexes: %w", err)
	}
	return m, nil
}

// createIndexes ensures lookup indexes on drugs and packages.
func (m *MongoDB) createIndexes(ctx context.Context) error {
	drugIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "canonical_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "normalized_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "aliases", Value: 1}},
		},
	}
	if _, err := m.Drugs.Indexes().CreateMany(ctx, drugIndexes); err != nil {
		return err
	}

	packageIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "package_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Candidate fetches filter by identity and read back in package order.
			Keys: bson.D{{Key: "canonical_id", Value: 1}, {Key: "package_id", Value: 1}},
		},
	}
	_, err := m.Packages.Indexes().CreateMany(ctx, packageIndexes)
	return err
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the primary.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
