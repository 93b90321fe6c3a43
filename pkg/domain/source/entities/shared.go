// Package entities holds the normalised sports-domain documents this service
// reads from the source collections named in the data store surface. The
// service never writes to these collections; they are produced externally.
package entities

import "github.com/google/uuid"

// LocalisedName is the "language map with a defaultLanguage selector" every
// named source entity carries (§3).
type LocalisedName struct {
	DefaultLanguage string            `json:"defaultLanguage" bson:"defaultLanguage"`
	Name            map[string]string `json:"name" bson:"name"`
}

// Resolve returns the value keyed by DefaultLanguage, or the empty string
// when the source carries no name at all.
func (l LocalisedName) Resolve() string {
	if l.Name == nil {
		return ""
	}
	return l.Name[l.DefaultLanguage]
}

// SgoMembership is one entry of an embedded sgoMemberships[] array.
type SgoMembership struct {
	SgoID    string `json:"sgoId" bson:"sgoId"`
	SgoScope string `json:"sgoScope" bson:"sgoScope"`
}

// Participant is one entry of an event's embedded participants[] array. A
// participant carrying both a team and a sports-person identity classifies
// as a sports-person; one carrying only a team identity is a team;
// participants missing both are dropped (§4.2).
type Participant struct {
	TeamID            string `json:"teamId,omitempty" bson:"teamId,omitempty"`
	TeamScope         string `json:"teamScope,omitempty" bson:"teamScope,omitempty"`
	SportsPersonID    string `json:"sportsPersonId,omitempty" bson:"sportsPersonId,omitempty"`
	SportsPersonScope string `json:"sportsPersonScope,omitempty" bson:"sportsPersonScope,omitempty"`
}

// ParticipantKind is the classification a Participant resolves to.
type ParticipantKind int

const (
	ParticipantNone ParticipantKind = iota
	ParticipantTeam
	ParticipantSportsPerson
)

// Classify implements the participant classification rule.
func (p Participant) Classify() ParticipantKind {
	hasSP := p.SportsPersonID != "" && p.SportsPersonScope != ""
	hasTeam := p.TeamID != "" && p.TeamScope != ""
	switch {
	case hasSP:
		return ParticipantSportsPerson
	case hasTeam:
		return ParticipantTeam
	default:
		return ParticipantNone
	}
}

// MemberRef is one entry of a team's embedded members[] array (sports-persons).
type MemberRef struct {
	SportsPersonID    string `json:"sportsPersonId" bson:"sportsPersonId"`
	SportsPersonScope string `json:"sportsPersonScope" bson:"sportsPersonScope"`
}

// Identity is the stable local/external identity pair every source document
// carries, embedded by value into each concrete entity below.
type Identity struct {
	GamedayID       uuid.UUID `json:"gamedayId" bson:"gamedayId"`
	ExternalID      string    `json:"externalId" bson:"externalId"`
	ExternalIDScope string    `json:"externalIdScope" bson:"externalIdScope"`
	ResourceType    string    `json:"resourceType" bson:"resourceType"`
}

func (i Identity) GetID() uuid.UUID { return i.GamedayID }
