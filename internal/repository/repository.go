package repository

import (
	"context"
	"errors"
	"time"

	"replacement-request-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrReplacementMissing = errors.New("order has no replacement request")
	ErrReplacementExists  = errors.New("order already has a replacement request")
)

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Save(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	filter := bson.M{"order_id": o.OrderID}
	update := bson.M{"$set": o}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// OpenReplacement attaches the sub-aggregate to an order that does not have
// one yet. The filter guards against a double filing racing past the
// service-level check.
func (m *MongoOrderRepository) OpenReplacement(ctx context.Context, orderID string, r *model.ReplacementRequest) error {
	filter := bson.M{
		"order_id":            orderID,
		"replacement_request": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"replacement_request": r,
			"updated_at":          time.Now().UTC(),
		},
	}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrReplacementExists
	}
	return nil
}

// ApplyTransition commits one replacement status change: current status,
// optional shipment fields and optional top-level fulfillment flip are set,
// and exactly one history record is pushed, all in a single update.
func (m *MongoOrderRepository) ApplyTransition(ctx context.Context, orderID string, status model.ReplacementStatus, shipment model.ReplacementShipment, fulfillment model.FulfillmentStatus, entry model.HistoryEntry) error {
	set := bson.M{
		"replacement_request.status": status,
		"updated_at":                 time.Now().UTC(),
	}
	if shipment.Courier != "" {
		set["replacement_request.shipment.courier"] = shipment.Courier
	}
	if shipment.TrackingID != "" {
		set["replacement_request.shipment.tracking_id"] = shipment.TrackingID
	}
	if fulfillment != "" {
		set["status"] = fulfillment
	}

	filter := bson.M{
		"order_id":            orderID,
		"replacement_request": bson.M{"$exists": true},
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"replacement_request.history": entry},
	}

	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrReplacementMissing
	}
	return nil
}

// UpdateShipment writes the courier/tracking sub-record without touching
// the status and without pushing a history entry; the shipment fields are
// independent of the status graph.
func (m *MongoOrderRepository) UpdateShipment(ctx context.Context, orderID string, shipment model.ReplacementShipment) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if shipment.Courier != "" {
		set["replacement_request.shipment.courier"] = shipment.Courier
	}
	if shipment.TrackingID != "" {
		set["replacement_request.shipment.tracking_id"] = shipment.TrackingID
	}

	filter := bson.M{
		"order_id":            orderID,
		"replacement_request": bson.M{"$exists": true},
	}
	res, err := m.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrReplacementMissing
	}
	return nil
}

func (m *MongoOrderRepository) UpdateFulfillment(ctx context.Context, orderID string, status model.FulfillmentStatus) error {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"order_id": orderID},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoOrderRepository) FindByCustomerID(ctx context.Context, customerID string) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"customer_id": customerID})
}

func (m *MongoOrderRepository) FindByReplacementStatus(ctx context.Context, status model.ReplacementStatus) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"replacement_request.status": status})
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
