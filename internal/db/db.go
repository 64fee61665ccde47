package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ekaraman/weather-reporter/internal/config"
	"github.com/ekaraman/weather-reporter/internal/logger"
	"github.com/ekaraman/weather-reporter/internal/weather"
)

const (
	databaseName   = "weather_project"
	collectionName = "weather_reports"
	connectTimeout = 5 * time.Second
)

// Error reports a connection or insert failure against the document store.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// StoredDocument is the persisted record: one raw payload plus capture
// metadata. Documents are append-only; there is no update or delete path.
type StoredDocument struct {
	City      string          `bson:"city"`
	Timestamp time.Time       `bson:"timestamp"`
	RawData   weather.Payload `bson:"raw_data"`
}

// Store writes weather reports into MongoDB. The client is long-lived and
// not meant to be shared across concurrent flows.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	insert func(ctx context.Context, doc StoredDocument) error
}

// Connect establishes the MongoDB connection and verifies reachability with
// a bounded ping. A failed check is reported as an Error.
func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, &Error{Msg: "database connection failed", Err: err}
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctxTimeout, nil); err != nil {
		return nil, &Error{Msg: "database connection failed, check MONGO_URI and server status", Err: err}
	}

	logger.Info("Successfully connected to MongoDB.")
	coll := client.Database(databaseName).Collection(collectionName)
	return &Store{
		client: client,
		coll:   coll,
		insert: func(ctx context.Context, doc StoredDocument) error {
			_, err := coll.InsertOne(ctx, doc)
			return err
		},
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return &Error{Msg: "failed to disconnect from MongoDB", Err: err}
	}
	logger.Info("Disconnected from MongoDB.")
	return nil
}

// Save inserts one weather report document with the current UTC capture
// time. A transient network failure during insert is retried exactly once;
// any other failure, or a failed retry, is reported as an Error.
func (s *Store) Save(ctx context.Context, cityName string, payload weather.Payload) error {
	doc := StoredDocument{
		City:      cityName,
		Timestamp: time.Now().UTC(),
		RawData:   payload,
	}

	err := s.insert(ctx, doc)
	if err == nil {
		logger.Info("Weather report saved for city %s", cityName)
		return nil
	}

	if mongo.IsNetworkError(err) {
		logger.Warn("Transient disconnect during insert, retrying once: %v", err)
		if retryErr := s.insert(ctx, doc); retryErr != nil {
			logger.Error("Retry failed while inserting weather report: %v", retryErr)
			return &Error{Msg: "database insert retry failed", Err: retryErr}
		}
		logger.Info("Weather report saved for city %s after retry", cityName)
		return nil
	}

	logger.Error("Failed to insert weather report: %v", err)
	return &Error{Msg: "failed to insert weather report", Err: err}
}
