package models

import "time"

type AuditLog struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	Entity      string    `bson:"entity" json:"entity"`
	Action      string    `bson:"action" json:"action"`
	PerformedBy string    `bson:"performed_by" json:"performed_by"` // could be user ID or system
	Data        any       `bson:"data" json:"data"`                 // raw payload
}
