package main

import (
	"context"
	"time"

	"github.com/developia-II/marketplace-backend/internal/adapters/repository/mongodb"
	"github.com/developia-II/marketplace-backend/internal/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run this script once per environment to create database indexes.
// Usage: go run scripts/create_indexes.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	config.SetupLogging(cfg.Log)
	logrus.SetLevel(logrus.DebugLevel)

	// Increase timeout for cloud connection (Atlas is slower than localhost)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.Mongo.URI).SetServerSelectionTimeout(30 * time.Second)

	logrus.Info("Connecting to MongoDB...")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logrus.Fatalf("Failed to create client: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logrus.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
		logrus.Fatalf("Failed to create indexes: %v", err)
	}
	logrus.Info("All indexes created successfully")
}
