package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/sitegrid/pkg/plan"
)

// Defaults for the Mongo backend.
const (
	DefaultMongoDatabase   = "sitegrid"
	DefaultMongoCollection = "sessions"
)

// MongoStore keeps documents in a MongoDB collection. Ids are ObjectID hex
// strings assigned by the server driver.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Config    map[string]int     `bson:"config"`
	Colors    map[string]string  `bson:"colors"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// NewMongoStore connects to uri and uses database.collection. Empty names
// select the defaults.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, doc *Document) (string, error) {
	d := stamp(doc, false)
	res, err := s.coll.InsertOne(ctx, mongoDocument{
		Config:    d.Config,
		Colors:    d.Colors,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var m mongoDocument
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return m.document(), nil
}

func (s *MongoStore) List(ctx context.Context) ([]*Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}

	var ms []mongoDocument
	if err := cur.All(ctx, &ms); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	out := make([]*Document, len(ms))
	for i := range ms {
		out[i] = ms[i].document()
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (m mongoDocument) document() *Document {
	d := &Document{
		ID:        m.ID.Hex(),
		Config:    plan.Quantities(m.Config),
		Colors:    m.Colors,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if d.Config == nil {
		d.Config = plan.Quantities{}
	}
	if d.Colors == nil {
		d.Colors = map[string]string{}
	}
	return d
}

var _ Store = (*MongoStore)(nil)
