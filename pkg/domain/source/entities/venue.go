package entities

type Venue struct {
	Identity      `bson:",inline"`
	LocalisedName `bson:",inline"`
}
