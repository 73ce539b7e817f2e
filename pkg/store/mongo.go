package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/schema"
)

// Collection names used by MongoStore.
const (
	TemplatesCollection = "templates"
	InstancesCollection = "instances"
)

// DefaultMongoDatabase is used when MongoConfig.Database is empty.
const DefaultMongoDatabase = "labelpress"

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// MongoStore stores templates and instances in MongoDB.
type MongoStore struct {
	client    *mongo.Client
	templates *mongo.Collection
	instances *mongo.Collection
	owned     bool
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, lperrors.New(lperrors.ErrCodeInvalidInput, "mongo uri is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, lperrors.Wrap(lperrors.ErrCodeNetwork, err, "connect to mongo")
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, lperrors.Wrap(lperrors.ErrCodeNetwork, err, "ping mongo")
	}

	s := NewMongoStoreFromClient(client, cfg.Database)
	s.owned = true
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close does not
// disconnect a client the store did not create.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	db := client.Database(database)
	return &MongoStore{
		client:    client,
		templates: db.Collection(TemplatesCollection),
		instances: db.Collection(InstancesCollection),
	}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.instances.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "template_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create instance index: %w", err)
	}
	return nil
}

func (s *MongoStore) GetTemplate(ctx context.Context, id string) (*schema.Template, error) {
	var t schema.Template
	err := s.templates.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, templateNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return &t, nil
}

func (s *MongoStore) ListTemplates(ctx context.Context) ([]schema.Template, error) {
	cur, err := s.templates.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var out []schema.Template
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	sortTemplates(out)
	return out, nil
}

func (s *MongoStore) SaveTemplate(ctx context.Context, t *schema.Template) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := prepareTemplate(t, now); err != nil {
		return err
	}

	prev, err := s.GetTemplate(ctx, t.ID)
	switch {
	case err == nil:
		t.CreatedAt = prev.CreatedAt
	case !lperrors.Is(err, lperrors.ErrCodeNotFound):
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.templates.ReplaceOne(ctx, bson.M{"_id": t.ID}, t, opts); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.templates.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if res.DeletedCount == 0 {
		return templateNotFound(id)
	}
	return nil
}

func (s *MongoStore) SaveInstance(ctx context.Context, inst *Instance) error {
	if err := prepareInstance(inst); err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.instances.ReplaceOne(ctx, bson.M{"_id": inst.ID}, inst, opts); err != nil {
		return fmt.Errorf("save instance: %w", err)
	}
	return nil
}

func (s *MongoStore) GetInstance(ctx context.Context, id string) (*Instance, error) {
	var inst Instance
	err := s.instances.FindOne(ctx, bson.M{"_id": id}).Decode(&inst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, instanceNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find instance: %w", err)
	}
	return &inst, nil
}

func (s *MongoStore) ListInstances(ctx context.Context, templateID string) ([]Instance, error) {
	filter := bson.M{}
	if templateID != "" {
		filter["template_id"] = templateID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.instances.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	var out []Instance
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode instances: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
