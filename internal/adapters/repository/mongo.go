package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okian/devxbattle/internal/domain/model"
	"github.com/okian/devxbattle/pkg/logger"
	"github.com/okian/devxbattle/pkg/metrics"
)

// MongoStore keeps users in a MongoDB collection with unique indexes on
// username and walletAddress.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	settings settings
}

// NewMongoStore connects, pings and ensures the unique indexes.
func NewMongoStore(ctx context.Context, uri, database string, opts ...Option) (*MongoStore, error) {
	s := newSettings(opts)
	if uri == "" {
		return nil, errors.New("mongo: empty connection uri")
	}
	if database == "" {
		database = "devx"
	}

	cctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	users := client.Database(database).Collection(s.collection)
	_, err = users.Indexes().CreateMany(cctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "walletAddress", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}

	s.log.Info(ctx, "mongo user store ready",
		logger.String("database", database),
		logger.String("collection", s.collection))
	return &MongoStore{client: client, users: users, settings: s}, nil
}

func (s *MongoStore) Driver() string { return DriverMongo }

func (s *MongoStore) Create(ctx context.Context, u model.User) (model.User, error) {
	metrics.RecordStoreOperation(DriverMongo, "create")
	u, err := validate(u)
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = s.settings.now().UTC()
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			metrics.RecordStoreError(DriverMongo, "duplicate")
			return model.User{}, ErrDuplicateKey
		}
		return model.User{}, s.fail(ctx, "create", err)
	}
	return u, nil
}

func (s *MongoStore) FindByWallet(ctx context.Context, wallet string) (model.User, error) {
	metrics.RecordStoreOperation(DriverMongo, "find_by_wallet")
	return s.findOne(ctx, "find_by_wallet", bson.M{"walletAddress": wallet})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	metrics.RecordStoreOperation(DriverMongo, "find_by_username")
	return s.findOne(ctx, "find_by_username", bson.M{"username": username})
}

func (s *MongoStore) SetSBTAddress(ctx context.Context, wallet, sbtAddress string) (model.User, error) {
	metrics.RecordStoreOperation(DriverMongo, "set_sbt")
	var u model.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"walletAddress": wallet},
		bson.M{"$set": bson.M{"sbtAddress": sbtAddress}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, s.fail(ctx, "set_sbt", err)
	}
	return u, nil
}

func (s *MongoStore) ListWithSBT(ctx context.Context) ([]model.User, error) {
	metrics.RecordStoreOperation(DriverMongo, "list_sbt")
	cur, err := s.users.Find(ctx,
		bson.M{"sbtAddress": bson.M{"$exists": true, "$ne": ""}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "username", Value: 1}}),
	)
	if err != nil {
		return nil, s.fail(ctx, "list_sbt", err)
	}
	out := []model.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, s.fail(ctx, "list_sbt", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findOne(ctx context.Context, op string, filter bson.M) (model.User, error) {
	var u model.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, s.fail(ctx, op, err)
	}
	return u, nil
}

func (s *MongoStore) fail(ctx context.Context, op string, err error) error {
	metrics.RecordStoreError(DriverMongo, op)
	s.settings.log.Error(ctx, "mongo operation failed", logger.String("op", op), logger.Error(err))
	return fmt.Errorf("mongo %s: %w", op, err)
}
