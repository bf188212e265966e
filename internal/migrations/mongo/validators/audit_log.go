package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"actor",
			"action",
			"entity",
			"entity_id",
			"at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"actor": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"action": bson.M{
				"bsonType": "string",
				"enum": []string{
					"reservation.admitted",
					"reservation.confirmed",
					"reservation.cancelled",
					"reservation.expired",
				},
			},

			"entity": bson.M{
				"bsonType": "string",
			},

			"entity_id": bson.M{
				"bsonType": "string",
			},

			"meta": bson.M{
				"bsonType": "object",
			},

			"at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
