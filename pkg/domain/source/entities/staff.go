package entities

// Staff carries a sports-person plus exactly one of (team, club, nation) as
// the organisation it serves in a given role.
type Staff struct {
	Identity `bson:",inline"`

	SportsPersonID    string `json:"sportsPersonId" bson:"sportsPersonId"`
	SportsPersonScope string `json:"sportsPersonScope" bson:"sportsPersonScope"`

	Role string `json:"role" bson:"role"` // "team" | "club" | "nation"

	TeamID    string `json:"teamId,omitempty" bson:"teamId,omitempty"`
	TeamScope string `json:"teamScope,omitempty" bson:"teamScope,omitempty"`

	ClubID    string `json:"clubId,omitempty" bson:"clubId,omitempty"`
	ClubScope string `json:"clubScope,omitempty" bson:"clubScope,omitempty"`

	NationID    string `json:"nationId,omitempty" bson:"nationId,omitempty"`
	NationScope string `json:"nationScope,omitempty" bson:"nationScope,omitempty"`
}

// Target returns the (id, scope) pair of whichever of team/club/nation is set.
func (s Staff) Target() (id, scope, role string) {
	switch {
	case s.TeamID != "" && s.TeamScope != "":
		return s.TeamID, s.TeamScope, "team"
	case s.ClubID != "" && s.ClubScope != "":
		return s.ClubID, s.ClubScope, "club"
	case s.NationID != "" && s.NationScope != "":
		return s.NationID, s.NationScope, "nation"
	default:
		return "", "", ""
	}
}
