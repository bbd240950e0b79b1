package validators

import "go.mongodb.org/mongo-driver/bson"

var CustomerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "full_name"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string"},
			"full_name": bson.M{"bsonType": "string", "minLength": 1},
			"email":     bson.M{"bsonType": "string"},
			// E.164
			"phone": bson.M{"bsonType": "string", "pattern": `^\+[1-9][0-9]{6,14}$`},
		},
	},
}

var VehicleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "plate", "category"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "string"},
			"plate":    bson.M{"bsonType": "string", "minLength": 1},
			"make":     bson.M{"bsonType": "string"},
			"model":    bson.M{"bsonType": "string"},
			"category": bson.M{"bsonType": "string"},
		},
	},
}
