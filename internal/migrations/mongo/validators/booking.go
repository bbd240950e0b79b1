package validators

import "go.mongodb.org/mongo-driver/bson"

const datePattern = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`

var statusChange = bson.M{
	"bsonType": "object",
	"required": []string{"status", "at"},
	"properties": bson.M{
		"status": bookingStatus,
		"at":     bson.M{"bsonType": "date"},
	},
}

var bookingStatus = bson.M{
	"bsonType": "string",
	"enum": []string{
		"pending",
		"active",
		"completed",
		"cancelled",
	},
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_ref",
			"customer_id",
			"vehicle_id",
			"start_date",
			"end_date",
			"status",
			"status_history",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_ref": bson.M{
				"bsonType":  "string",
				"minLength": 4,
				"maxLength": 32,
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"vehicle_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			// Calendar dates are stored as ISO strings so they sort and
			// compare lexically.
			"start_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"end_date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"status": bookingStatus,

			"status_history": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items":    statusChange,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
