package entities

import "github.com/google/uuid"

// Ranking carries a compound key: a stage-or-event context, a
// team-or-sportsPerson subject, a dateTime and a rankingPosition (§3). Exactly
// one of (StageID, StageScope)/(EventID, EventScope) and exactly one of
// (TeamID, TeamScope)/(SportsPersonID, SportsPersonScope) are populated.
type Ranking struct {
	GamedayID    uuid.UUID `json:"gamedayId" bson:"gamedayId"`
	ResourceType string    `json:"resourceType" bson:"resourceType"`

	StageID    string `json:"stageId,omitempty" bson:"stageId,omitempty"`
	StageScope string `json:"stageScope,omitempty" bson:"stageScope,omitempty"`

	EventID    string `json:"eventId,omitempty" bson:"eventId,omitempty"`
	EventScope string `json:"eventScope,omitempty" bson:"eventScope,omitempty"`

	TeamID    string `json:"teamId,omitempty" bson:"teamId,omitempty"`
	TeamScope string `json:"teamScope,omitempty" bson:"teamScope,omitempty"`

	SportsPersonID    string `json:"sportsPersonId,omitempty" bson:"sportsPersonId,omitempty"`
	SportsPersonScope string `json:"sportsPersonScope,omitempty" bson:"sportsPersonScope,omitempty"`

	DateTime         string `json:"dateTime" bson:"dateTime"`
	RankingPosition  int    `json:"rankingPosition" bson:"rankingPosition"`
}

func (r Ranking) GetID() uuid.UUID { return r.GamedayID }
