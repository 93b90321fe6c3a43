package entities

import "github.com/google/uuid"

// KeyMoment carries a compound key instead of the (externalId, externalIdScope)
// pair every other source entity uses: (dateTime, eventScope, eventId, type,
// subType) identifies it (§3).
type KeyMoment struct {
	GamedayID    uuid.UUID `json:"gamedayId" bson:"gamedayId"`
	ResourceType string    `json:"resourceType" bson:"resourceType"`

	DateTime string `json:"dateTime" bson:"dateTime"`

	EventID    string `json:"eventId" bson:"eventId"`
	EventScope string `json:"eventScope" bson:"eventScope"`

	Type    string `json:"type" bson:"type"`
	SubType string `json:"subType" bson:"subType"`
}

func (k KeyMoment) GetID() uuid.UUID { return k.GamedayID }
