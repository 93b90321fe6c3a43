// Package keycodec implements deterministic, lossless composition and
// decomposition of the composite external keys that identify every entity
// the aggregator projects.
package keycodec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gameday/aggregation-api/pkg/domain/common"
)

// EncodeEntityKey implements encodeEntityKey(id, scope) = id keySep scope.
func EncodeEntityKey(id, scope string) string {
	return id + keySep + scope
}

// DecodeEntityKey splits on the leftmost keySep, as required for simple keys.
func DecodeEntityKey(key string) (id, scope string, err error) {
	idx := strings.Index(key, keySep)
	if idx < 0 {
		return "", "", common.NewErrMalformedKey(key, "missing keySep")
	}
	return key[:idx], key[idx+len(keySep):], nil
}

// EncodeStaffKey implements:
// sp.id keySep sp.scope roleSep target.id keySep target.scope
func EncodeStaffKey(spID, spScope string, role StaffRole, targetID, targetScope string) (string, error) {
	sep, ok := roleSep(role)
	if !ok {
		return "", fmt.Errorf("keycodec: unknown staff role %q", role)
	}
	return spID + keySep + spScope + sep + targetID + keySep + targetScope, nil
}

// DecodeStaffKey recovers the (sportsPerson, role, target) tuple from a staff key.
func DecodeStaffKey(key string) (spID, spScope string, role StaffRole, targetID, targetScope string, err error) {
	for _, candidate := range []StaffRole{StaffRoleTeam, StaffRoleClub, StaffRoleNation} {
		sep, _ := roleSep(candidate)
		idx := strings.Index(key, sep)
		if idx < 0 {
			continue
		}
		spPart, targetPart := key[:idx], key[idx+len(sep):]
		spID, spScope, err = DecodeEntityKey(spPart)
		if err != nil {
			return "", "", "", "", "", err
		}
		targetID, targetScope, err = DecodeEntityKey(targetPart)
		if err != nil {
			return "", "", "", "", "", err
		}
		return spID, spScope, candidate, targetID, targetScope, nil
	}
	return "", "", "", "", "", common.NewErrMalformedKey(key, "no staff role separator found")
}

// EncodeKeyMomentKey implements:
// dateTime keySep eventScope keySep eventId keySep type keySep subType
// Empty segments are permitted only when the source field is absent.
func EncodeKeyMomentKey(dateTime, eventScope, eventID, momentType, subType string) string {
	return strings.Join([]string{dateTime, eventScope, eventID, momentType, subType}, keySep)
}

// DecodeKeyMomentKey splits a key-moment key into its five ordered fields.
func DecodeKeyMomentKey(key string) (dateTime, eventScope, eventID, momentType, subType string, err error) {
	parts := strings.Split(key, keySep)
	if len(parts) != 5 {
		return "", "", "", "", "", common.NewErrMalformedKey(key, fmt.Sprintf("expected 5 keySep-delimited fields, got %d", len(parts)))
	}
	return parts[0], parts[1], parts[2], parts[3], parts[4], nil
}

// RankingKeyInput carries the ranking's optional context pairs; exactly one
// of (Stage, Event) and exactly one of (Team, SportsPerson) must be set.
type RankingKeyInput struct {
	StageID, StageScope             string
	EventID, EventScope             string
	TeamID, TeamScope               string
	SportsPersonID, SportsPersonScope string
	DateTime                        string
	Position                        int
}

// EncodeRankingKey picks the stage-or-event prefix and team-or-sportsPerson
// suffix based on which (scope, id) pair is present, per the priority rule:
// stage wins over event when both are (improperly) present.
func EncodeRankingKey(in RankingKeyInput) (string, error) {
	var prefixID, prefixScope, roleSepVal string
	switch {
	case in.StageID != "" && in.StageScope != "":
		prefixID, prefixScope = in.StageID, in.StageScope
		if in.TeamID != "" && in.TeamScope != "" {
			roleSepVal = rankingStageTeamSep
		} else if in.SportsPersonID != "" && in.SportsPersonScope != "" {
			roleSepVal = rankingStageSpSep
		} else {
			return "", fmt.Errorf("keycodec: ranking missing both team and sportsPerson context")
		}
	case in.EventID != "" && in.EventScope != "":
		prefixID, prefixScope = in.EventID, in.EventScope
		if in.TeamID != "" && in.TeamScope != "" {
			roleSepVal = rankingEventTeamSep
		} else if in.SportsPersonID != "" && in.SportsPersonScope != "" {
			roleSepVal = rankingEventSpSep
		} else {
			return "", fmt.Errorf("keycodec: ranking missing both team and sportsPerson context")
		}
	default:
		return "", fmt.Errorf("keycodec: ranking missing both stage and event context")
	}

	var suffixID, suffixScope string
	if roleSepVal == rankingStageTeamSep || roleSepVal == rankingEventTeamSep {
		suffixID, suffixScope = in.TeamID, in.TeamScope
	} else {
		suffixID, suffixScope = in.SportsPersonID, in.SportsPersonScope
	}

	key := prefixID + keySep + prefixScope + roleSepVal + suffixID + keySep + suffixScope +
		labelSep + in.DateTime + positionSep + strconv.Itoa(in.Position)
	return key, nil
}

// DecodeRankingKey recovers a RankingKeyInput from an encoded ranking key.
func DecodeRankingKey(key string) (RankingKeyInput, error) {
	var out RankingKeyInput

	labelIdx := strings.Index(key, labelSep)
	if labelIdx < 0 {
		return out, common.NewErrMalformedKey(key, "missing labelSep")
	}
	head, tail := key[:labelIdx], key[labelIdx+len(labelSep):]

	posIdx := strings.Index(tail, positionSep)
	if posIdx < 0 {
		return out, common.NewErrMalformedKey(key, "missing positionSep")
	}
	out.DateTime = tail[:posIdx]
	posStr := tail[posIdx+len(positionSep):]
	pos, err := strconv.Atoi(posStr)
	if err != nil {
		return out, common.NewErrMalformedKey(key, "non-numeric ranking position")
	}
	out.Position = pos

	type roleMatch struct {
		sep       string
		isStage   bool
		isTeam    bool
	}
	roles := []roleMatch{
		{rankingStageTeamSep, true, true},
		{rankingEventTeamSep, false, true},
		{rankingStageSpSep, true, false},
		{rankingEventSpSep, false, false},
	}

	for _, r := range roles {
		idx := strings.Index(head, r.sep)
		if idx < 0 {
			continue
		}
		prefixPart, suffixPart := head[:idx], head[idx+len(r.sep):]
		prefixID, prefixScope, err := DecodeEntityKey(prefixPart)
		if err != nil {
			return out, err
		}
		suffixID, suffixScope, err := DecodeEntityKey(suffixPart)
		if err != nil {
			return out, err
		}
		if r.isStage {
			out.StageID, out.StageScope = prefixID, prefixScope
		} else {
			out.EventID, out.EventScope = prefixID, prefixScope
		}
		if r.isTeam {
			out.TeamID, out.TeamScope = suffixID, suffixScope
		} else {
			out.SportsPersonID, out.SportsPersonScope = suffixID, suffixScope
		}
		return out, nil
	}

	return out, common.NewErrMalformedKey(key, "no ranking role separator found")
}
