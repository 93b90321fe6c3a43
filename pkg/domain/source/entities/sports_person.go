package entities

type SportsPerson struct {
	Identity      `bson:",inline"`
	LocalisedName `bson:",inline"`

	ClubID    string `json:"clubId,omitempty" bson:"clubId,omitempty"`
	ClubScope string `json:"clubScope,omitempty" bson:"clubScope,omitempty"`
}
