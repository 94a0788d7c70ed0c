//go:build integration

// Package testutil starts the MongoDB container shared by the integration
// tests of a package.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const (
	mongoImage = "mongo:7.0"
	// maxDBNameLength keeps generated names well under MongoDB's 64-byte limit.
	maxDBNameLength = 40
)

// Mongo is a running MongoDB container.
type Mongo struct {
	container *mongodb.MongoDBContainer
	URI       string
}

var (
	shared     *Mongo
	sharedErr  error
	sharedOnce sync.Once
	dbSeq      atomic.Int64
)

// StartMongo starts a standalone MongoDB container.
func StartMongo(ctx context.Context) (*Mongo, error) {
	container, err := mongodb.Run(ctx, mongoImage)
	if err != nil {
		return nil, fmt.Errorf("start mongodb container: %w", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("mongodb connection string: %w", err)
	}
	return &Mongo{container: container, URI: uri}, nil
}

// Stop terminates the container.
func (m *Mongo) Stop(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	if err := m.container.Terminate(ctx); err != nil {
		return fmt.Errorf("terminate mongodb container: %w", err)
	}
	return nil
}

// RunWithMongo starts the shared container, runs the tests and stops it.
// Use it from TestMain:
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.RunWithMongo(m))
//	}
func RunWithMongo(m *testing.M) int {
	ctx := context.Background()
	sharedOnce.Do(func() {
		shared, sharedErr = StartMongo(ctx)
	})
	if sharedErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "integration tests need docker: %v\n", sharedErr)
		return 1
	}

	code := m.Run()

	stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := shared.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return code
}

// MongoURI returns the URI of the shared container. It panics when
// RunWithMongo has not started one.
func MongoURI() string {
	if shared == nil {
		panic("testutil: shared MongoDB not started, call RunWithMongo from TestMain")
	}
	return shared.URI
}

// DatabaseName returns a database name unique to the test, so parallel tests
// sharing a container never see each other's data.
func DatabaseName(t testing.TB) string {
	t.Helper()
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, t.Name())
	if len(name) > maxDBNameLength {
		name = name[:maxDBNameLength]
	}
	return fmt.Sprintf("%s_%d", name, dbSeq.Add(1))
}
