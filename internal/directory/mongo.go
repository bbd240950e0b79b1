package directory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kaycrm/pkg/config"
	mongotx "kaycrm/pkg/db/mongo"
	"kaycrm/pkg/model"
	"kaycrm/pkg/sanitizer"
)

type mongoDirectory struct {
	cfg       *config.Config
	customers *mongo.Collection
	vehicles  *mongo.Collection
}

func NewMongoDirectory(cfg *config.Config) Directory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDirectory{
		cfg:       cfg,
		customers: db.Collection(CustomersCollection),
		vehicles:  db.Collection(VehiclesCollection),
	}
}

func (d *mongoDirectory) CustomerExists(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, d.customers, id)
}

func (d *mongoDirectory) VehicleExists(ctx context.Context, id string) (bool, error) {
	return d.exists(ctx, d.vehicles, id)
}

func (d *mongoDirectory) exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, d.cfg.ReadTimeout)
	defer cancel()

	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up %s %s: %w", coll.Name(), id, err)
	}
	return n > 0, nil
}

func (d *mongoDirectory) FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	normalized := sanitizer.NormalizePhone(phone)
	if normalized == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := mongotx.WithTimeout(ctx, d.cfg.ReadTimeout)
	defer cancel()

	var customer model.Customer
	if err := d.customers.FindOne(ctx, bson.M{"phone": normalized}).Decode(&customer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find customer by phone: %w", err)
	}
	return &customer, nil
}
