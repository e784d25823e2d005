package database

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The Mongo handle is a shared, long-lived resource reused across requests.
// Connect is idempotent and safe under concurrent first use: whichever
// caller gets the lock first establishes the connection, everyone else
// reuses it.
var (
	mongoMu sync.Mutex
	client  *mongo.Client
	db      *mongo.Database

	savedURI string
)

// Connect establishes the MongoDB connection if one does not exist yet.
// Calling it again after a successful connect is a no-op.
func Connect(mongoURI string) error {
	mongoMu.Lock()
	defer mongoMu.Unlock()
	if client != nil {
		return nil
	}
	savedURI = mongoURI
	return connectLocked()
}

// connectLocked dials Mongo. Callers must hold mongoMu.
func connectLocked() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(savedURI)
	// Atlas can be slow to pick a server on cold starts
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	c, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := c.Ping(pingCtx, nil); err != nil {
		c.Disconnect(context.Background())
		return err
	}

	client = c
	db = c.Database(databaseName(savedURI))

	log.Println("✅ Connected to MongoDB")
	return nil
}

// DB returns the shared database handle, connecting lazily on first use.
func DB() (*mongo.Database, error) {
	mongoMu.Lock()
	defer mongoMu.Unlock()
	if db != nil {
		return db, nil
	}
	if err := connectLocked(); err != nil {
		return nil, err
	}
	return db, nil
}

// databaseName extracts the database name from a connection string,
// falling back to "journy". Format: mongodb://.../database_name?...
func databaseName(mongoURI string) string {
	name := "journy"
	if mongoURI == "" {
		return name
	}
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			name = dbPart
		}
	}
	return name
}

// Disconnect closes the MongoDB connection if one was established.
func Disconnect() error {
	mongoMu.Lock()
	defer mongoMu.Unlock()
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := client.Disconnect(ctx)
	client = nil
	db = nil
	return err
}
