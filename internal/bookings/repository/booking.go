package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/pkg/config"
	mongotx "kaycrm/pkg/db/mongo"
	"kaycrm/pkg/model"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	booking.CreatedAt = booking.CreatedAt.Truncate(time.Millisecond)
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = booking.CreatedAt
	}
	booking.UpdatedAt = booking.UpdatedAt.Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) FindByVehicle(ctx context.Context, vehicleID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "created_at", Value: 1}})
	return r.find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
}

func (r *mongoBookingRepository) FindHeld(ctx context.Context) ([]model.Hold, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"status": bson.M{"$in": heldStatuses()}}
	opts := options.Find().
		SetProjection(bson.M{"vehicle_id": 1, "start_date": 1, "end_date": 1}).
		SetSort(bson.D{{Key: "vehicle_id", Value: 1}, {Key: "start_date", Value: 1}})

	bookings, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	holds := make([]model.Hold, 0, len(bookings))
	for _, b := range bookings {
		holds = append(holds, model.Hold{BookingID: b.ID, VehicleID: b.VehicleID, Range: b.Range})
	}
	return holds, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, expected model.Status, change model.StatusChange) (*model.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	change.At = change.At.UTC().Truncate(time.Millisecond)

	var updated model.Booking
	err = r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var current model.Booking
		if err := r.collection.FindOne(sessCtx, bson.M{"_id": objectID}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return bookingserrors.ErrNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}
		if current.Status != expected {
			return fmt.Errorf("%w: expected %s, found %s", bookingserrors.ErrStaleStatus, expected, current.Status)
		}

		update := bson.M{
			"$set": bson.M{
				"status":     change.Status,
				"updated_at": change.At,
			},
			"$push": bson.M{"status_history": change},
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		filter := bson.M{"_id": objectID, "status": expected}
		if err := r.collection.FindOneAndUpdate(sessCtx, filter, update, opts).Decode(&updated); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return bookingserrors.ErrStaleStatus
			}
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}
