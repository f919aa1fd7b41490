package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStorage is a document-store implementation of the Storage interface
// for deployments without Postgres.
type MongoStorage struct {
	coll *mongo.Collection
}

type mongoNotification struct {
	ID        string     `bson:"_id"`
	UserID    string     `bson:"user_id"`
	Category  string     `bson:"category"`
	Message   string     `bson:"message"`
	Link      string     `bson:"link,omitempty"`
	Read      bool       `bson:"read"`
	ReadAt    *time.Time `bson:"read_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at"`
}

// NewMongoStorage creates a MongoDB-backed notification storage using the
// "notifications" collection of the given database.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection("notifications")}
}

// EnsureIndexes creates the indexes the storage queries rely on. Call once at
// startup; index creation is idempotent.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

func (s *MongoStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidNotification)
	}
	if notif.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidNotification)
	}
	if !notif.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidNotification, notif.Category)
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	_, err := s.coll.InsertOne(ctx, mongoNotification{
		ID:        notif.ID,
		UserID:    notif.UserID,
		Category:  string(notif.Category),
		Message:   notif.Message,
		Link:      notif.Link,
		Read:      notif.Read,
		ReadAt:    notif.ReadAt,
		CreatedAt: notif.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert notification %s: %w", notif.ID, err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, notifID string) (*Notification, error) {
	var doc mongoNotification
	err := s.coll.FindOne(ctx, bson.M{"_id": notifID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification %s: %w", notifID, err)
	}
	return doc.toNotification(), nil
}

func (s *MongoStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	filter := bson.M{"user_id": userID}
	if opts.OnlyUnread {
		filter["read"] = false
	}
	if len(opts.Categories) > 0 {
		cats := make([]string, len(opts.Categories))
		for i, c := range opts.Categories {
			cats[i] = string(c)
		}
		filter["category"] = bson.M{"$in": cats}
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts = findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	result := []Notification{}
	for cursor.Next(ctx) {
		var doc mongoNotification
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode notification document: %w", err)
		}
		result = append(result, *doc.toNotification())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification documents: %w", err)
	}

	return result, nil
}

func (s *MongoStorage) MarkRead(ctx context.Context, notifID string) error {
	// Filtering on read=false keeps read_at at its first value; the flag
	// never reverts.
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": notifID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notifID, err)
	}
	if res.MatchedCount == 0 {
		count, err := s.coll.CountDocuments(ctx, bson.M{"_id": notifID})
		if err != nil {
			return fmt.Errorf("failed to check notification %s: %w", notifID, err)
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *MongoStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", userID, err)
	}
	return int(count), nil
}

func (d mongoNotification) toNotification() *Notification {
	return &Notification{
		ID:        d.ID,
		UserID:    d.UserID,
		Category:  Category(d.Category),
		Message:   d.Message,
		Link:      d.Link,
		Read:      d.Read,
		ReadAt:    d.ReadAt,
		CreatedAt: d.CreatedAt,
	}
}
