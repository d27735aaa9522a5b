package membership

import "strings"

type Level string

const (
	LevelBasic    Level = "basic"
	LevelSilver   Level = "silver"
	LevelGold     Level = "gold"
	LevelPlatinum Level = "platinum"
	LevelVIP      Level = "vip"
)

// Levels lists every tier from lowest to highest rank.
var Levels = []Level{LevelBasic, LevelSilver, LevelGold, LevelPlatinum, LevelVIP}

// Rank orders tiers; basic is 0 and vip is 4. Unknown values rank -1.
func (l Level) Rank() int {
	for i, lvl := range Levels {
		if lvl == l {
			return i
		}
	}
	return -1
}

func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// ParseLevel accepts the legacy "bronze" name as an alias of basic.
func ParseLevel(s string) (Level, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "bronze" {
		return LevelBasic, true
	}
	l := Level(v)
	return l, l.Valid()
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDormant  Status = "dormant"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusDormant}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDormant:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

type RiskLevel string

const (
	RiskStable   RiskLevel = "stable"
	RiskAtRisk   RiskLevel = "at_risk"
	RiskHighRisk RiskLevel = "high_risk"
)

var RiskLevels = []RiskLevel{RiskStable, RiskAtRisk, RiskHighRisk}

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskStable, RiskAtRisk, RiskHighRisk:
		return true
	}
	return false
}

func ParseRiskLevel(s string) (RiskLevel, bool) {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}
