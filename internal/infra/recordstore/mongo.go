package recordstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yanqian/shadowcast/internal/domain/record"
	apperrors "github.com/yanqian/shadowcast/pkg/errors"
	"github.com/yanqian/shadowcast/pkg/util"
)

// MongoConfig targets one collection.
type MongoConfig struct {
	ConnectionString string
	Database         string
	Collection       string
	ConnectTimeout   time.Duration
}

// mongoDocument is the persisted layout. timestamp holds the naive site-local
// wall clock, which is how the Python producer stored it.
type mongoDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
	Time      string             `bson:"time"`
	Data      string             `bson:"data"`
}

// MongoStore owns one client for the lifetime of a request.
type MongoStore struct {
	cfg        MongoConfig
	logger     *slog.Logger
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoOpener returns an opener that builds a fresh MongoStore per request.
func NewMongoOpener(cfg MongoConfig, logger *slog.Logger) record.Opener {
	logger = logger.With("component", "recordstore.mongo")
	return record.WithIDValidation(record.OpenerFunc(func() record.Store {
		return &MongoStore{cfg: cfg, logger: logger}
	}), func(id string) error {
		_, err := parseObjectID(id)
		return err
	})
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Wrap(apperrors.CodeInvalidInput, "malformed record id", err)
	}
	return oid, nil
}

// Connect implements record.Store.
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	timeout := s.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(s.cfg.ConnectionString).SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		s.logger.Error("mongodb connect failed", "database", s.cfg.Database, "error", err)
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "connect mongodb", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		s.logger.Error("mongodb ping failed", "database", s.cfg.Database, "error", err)
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "connect mongodb", err)
	}
	s.client = client
	s.collection = client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	return nil
}

// Insert implements record.Store.
func (s *MongoStore) Insert(ctx context.Context, rec record.Record) (string, error) {
	if s.collection == nil {
		return "", errNotConnected
	}
	res, err := s.collection.InsertOne(ctx, toMongoDocument(rec))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStoreUnavailable, "insert shadow record", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperrors.Wrap(apperrors.CodeStoreUnavailable, "mongodb returned a non ObjectID identifier", nil)
	}
	s.logger.Info("record inserted", "record_id", oid.Hex())
	return oid.Hex(), nil
}

// Get implements record.Store.
func (s *MongoStore) Get(ctx context.Context, id string) (record.Record, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return record.Record{}, err
	}
	if s.collection == nil {
		return record.Record{}, errNotConnected
	}
	var doc mongoDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return record.Record{}, apperrors.Wrap(apperrors.CodeNotFound, "record not found", nil)
	}
	if err != nil {
		return record.Record{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "read shadow record", err)
	}
	return fromMongoDocument(doc), nil
}

// Close implements record.Store.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	client := s.client
	s.client, s.collection = nil, nil
	if err := client.Disconnect(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "disconnect mongodb", err)
	}
	return nil
}

func toMongoDocument(rec record.Record) mongoDocument {
	return mongoDocument{
		Timestamp: util.WallClockUTC(rec.Timestamp),
		Time:      rec.Time,
		Data:      rec.Data,
	}
}

func fromMongoDocument(doc mongoDocument) record.Record {
	return record.Record{
		ID:        doc.ID.Hex(),
		Timestamp: doc.Timestamp,
		Time:      doc.Time,
		Data:      doc.Data,
	}
}

var _ record.Store = (*MongoStore)(nil)
