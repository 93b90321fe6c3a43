package keycodec

// Separators are bit-exact per the external interface contract: distinct,
// human-readable, and never expected to occur inside a source id or scope.
const (
	keySep      = " @ "
	teamSep     = " /team/ "
	clubSep     = " /club/ "
	nationSep   = " /nation/ "
	eventSep    = " /event/ "
	stageSep    = " /stage/ "
	spSep       = " /sp/ "
	labelSep    = " /label/ "
	positionSep = " /rank/ "

	rankingStageTeamSep = " /st/ "
	rankingEventTeamSep = " /et/ "
	rankingStageSpSep   = " /ssp/ "
	rankingEventSpSep   = " /esp/ "
)

// StaffRole names the exactly-one-of role a staff member's target carries.
type StaffRole string

const (
	StaffRoleTeam   StaffRole = "team"
	StaffRoleClub   StaffRole = "club"
	StaffRoleNation StaffRole = "nation"
)

func roleSep(role StaffRole) (string, bool) {
	switch role {
	case StaffRoleTeam:
		return teamSep, true
	case StaffRoleClub:
		return clubSep, true
	case StaffRoleNation:
		return nationSep, true
	default:
		return "", false
	}
}
