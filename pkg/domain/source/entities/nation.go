package entities

// Nation is a country-level entity that sgos, teams and venues relate to.
type Nation struct {
	Identity      `bson:",inline"`
	LocalisedName `bson:",inline"`
}
