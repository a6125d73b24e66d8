package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/samirrijal/mapnav/internal/core/domain"
)

const collectionName = "locations"

// listOrder sorts by server-stamped creation time. _id breaks ties between documents
// created in the same millisecond.
var listOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// Client wraps a mongo.Client bound to one database.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri and verifies the primary is reachable.
func New(ctx context.Context, uri, database string) (*Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Client{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (c *Client) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.client.Disconnect(ctx)
}

type locationDoc struct {
	ID          bson.ObjectID `bson:"_id"`
	Name        string        `bson:"name"`
	Latitude    float64       `bson:"latitude"`
	Longitude   float64       `bson:"longitude"`
	Type        string        `bson:"type"`
	Description string        `bson:"description,omitempty"`
	CreatedAt   time.Time     `bson:"created_at"`
}

func (d locationDoc) toDomain() domain.Location {
	return domain.Location{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Type:        domain.LocationType(d.Type),
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

// LocationRepo implements ports.LocationRepository on a document collection.
type LocationRepo struct {
	c    *Client
	coll *mongo.Collection
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(c *Client) *LocationRepo {
	return &LocationRepo{c: c, coll: c.db.Collection(collectionName)}
}

// Insert appends a location with a fresh ObjectID.
func (r *LocationRepo) Insert(ctx context.Context, l *domain.Location) error {
	doc := locationDoc{
		ID:          bson.NewObjectID(),
		Name:        l.Name,
		Latitude:    l.Latitude,
		Longitude:   l.Longitude,
		Type:        string(l.Type),
		Description: l.Description,
		// BSON dates carry millisecond precision.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	l.ID = doc.ID.Hex()
	l.CreatedAt = doc.CreatedAt
	return nil
}

// List returns all locations in creation order.
func (r *LocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(listOrder))
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	var docs []locationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}

	locs := make([]domain.Location, 0, len(docs))
	for _, d := range docs {
		locs = append(locs, d.toDomain())
	}
	return locs, nil
}

// Ping checks the primary is reachable.
func (r *LocationRepo) Ping(ctx context.Context) error {
	return r.c.client.Ping(ctx, readpref.Primary())
}
