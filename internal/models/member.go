package models

import "time"

// MemberCodePrefix prefixes every human member code (M001, M002, ...).
const MemberCodePrefix = "M"

// Standing is the membership state of a medium.
type Standing string

const (
	StandingActive     Standing = "ACTIVE"
	StandingOnLeave    Standing = "ON_LEAVE"
	StandingSuspended  Standing = "SUSPENDED"
	StandingTerminated Standing = "TERMINATED"
)

// Valid reports whether the standing is a supported value.
func (s Standing) Valid() bool {
	switch s {
	case StandingActive, StandingOnLeave, StandingSuspended, StandingTerminated:
		return true
	default:
		return false
	}
}

// MemberLevel is the development level inside the mediumship corps.
type MemberLevel string

const (
	LevelBeginner   MemberLevel = "LEVEL_1_BEGINNER"
	LevelDeveloping MemberLevel = "LEVEL_2_DEVELOPING"
	LevelWorking    MemberLevel = "LEVEL_3_WORKING"
	LevelLeader     MemberLevel = "LEVEL_4_LEADER"
)

// Valid reports whether the level is a supported value.
func (l MemberLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelDeveloping, LevelWorking, LevelLeader:
		return true
	default:
		return false
	}
}

// AlertTier identifies one of the one-time absence alerts.
type AlertTier int

const (
	AlertTierWarning  AlertTier = 25
	AlertTierCritical AlertTier = 50
)

// Valid reports whether the tier maps onto a member flag.
func (t AlertTier) Valid() bool {
	return t == AlertTierWarning || t == AlertTierCritical
}

// Member is a medium enrolled in the corps.
type Member struct {
	ID              int64       `db:"id" json:"id"`
	Code            string      `db:"code" json:"code"`
	Name            string      `db:"name" json:"name"`
	Email           *string     `db:"email" json:"email,omitempty"`
	Phone           *string     `db:"phone" json:"phone,omitempty"`
	Level           MemberLevel `db:"level" json:"level"`
	Standing        Standing    `db:"standing" json:"standing"`
	Alert25Sent     bool        `db:"alert_25_sent" json:"alert_25_sent"`
	Alert50Sent     bool        `db:"alert_50_sent" json:"alert_50_sent"`
	BirthDate       *time.Time  `db:"birth_date" json:"birth_date,omitempty"`
	EntryDate       *time.Time  `db:"entry_date" json:"entry_date,omitempty"`
	TerminationDate *time.Time  `db:"termination_date" json:"termination_date,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// ContactEmail returns the e-mail address or an empty string.
func (m *Member) ContactEmail() string {
	if m == nil || m.Email == nil {
		return ""
	}
	return *m.Email
}

// AlertSent reports whether the given tier already fired for the member.
func (m *Member) AlertSent(tier AlertTier) bool {
	switch tier {
	case AlertTierWarning:
		return m.Alert25Sent
	case AlertTierCritical:
		return m.Alert50Sent
	default:
		return false
	}
}

// MemberFilter narrows member listings.
type MemberFilter struct {
	Standing *Standing
	Search   string
	Limit    int
	Offset   int
}
