package entities

type Stage struct {
	Identity      `bson:",inline"`
	LocalisedName `bson:",inline"`

	CompetitionID    string `json:"competitionId" bson:"competitionId"`
	CompetitionScope string `json:"competitionScope" bson:"competitionScope"`

	VenueID    string `json:"venueId,omitempty" bson:"venueId,omitempty"`
	VenueScope string `json:"venueScope,omitempty" bson:"venueScope,omitempty"`
}
