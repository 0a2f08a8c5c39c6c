package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biterush/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderRepository stores orders as documents in a MongoDB collection.
type MongoOrderRepository struct {
	orders *mongo.Collection
}

// NewMongoOrderRepository creates a repository backed by the "orders" collection of db.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		orders: db.Collection("orders"),
	}
}

// EnsureIndexes creates the indexes used by the listing queries.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// Create inserts a new order document.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("order %s: %w", order.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves a single order document by its ID.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser retrieves one page of the orders placed by userID, newest first.
func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID string, page Page) ([]models.Order, int64, error) {
	return r.list(ctx, bson.M{"user": userID}, page)
}

// List retrieves one page of all orders, newest first.
func (r *MongoOrderRepository) List(ctx context.Context, page Page) ([]models.Order, int64, error) {
	return r.list(ctx, bson.M{}, page)
}

// UpdateFields applies $set/$unset for the changed fields and increments __v
// in a single findAndModify.
func (r *MongoOrderRepository) UpdateFields(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Payment != nil {
		set["isPaid"] = update.Payment.IsPaid
		setOrUnset(set, unset, "paidAt", update.Payment.PaidAt)
	}
	if update.Delivery != nil {
		set["isDelivered"] = update.Delivery.IsDelivered
		setOrUnset(set, unset, "deliveredAt", update.Delivery.DeliveredAt)
	}

	doc := bson.M{
		"$set": set,
		"$inc": bson.M{"__v": 1},
	}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	filter := bson.M{"_id": id}
	if update.ExpectedVersion != nil {
		filter["__v"] = *update.ExpectedVersion
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	err := r.orders.FindOneAndUpdate(ctx, filter, doc, opts).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update order %s: %w", id, err)
	}

	// Either the order is gone or its version moved on.
	n, err := r.orders.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil, fmt.Errorf("order %s: %w", id, ErrVersionConflict)
}

// TopCustomers groups the order documents by user with $group.
func (r *MongoOrderRepository) TopCustomers(ctx context.Context, limit int) ([]models.CustomerOrderCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user"},
			{Key: "orderCount", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalSpent", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "orderCount", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders by user: %w", err)
	}
	defer cursor.Close(ctx)

	rows := make([]models.CustomerOrderCount, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode order aggregate: %w", err)
	}
	return rows, nil
}

func (r *MongoOrderRepository) list(ctx context.Context, filter bson.M, page Page) ([]models.Order, int64, error) {
	total, err := r.orders.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))
	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, total, nil
}

func setOrUnset(set, unset bson.M, key string, t *time.Time) {
	if t == nil {
		unset[key] = ""
		return
	}
	set[key] = *t
}
