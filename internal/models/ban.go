package models

import (
	"time"
)

// MaxBanReasonLength bounds the reason given for a ban
const MaxBanReasonLength = 100

// Ban blocks a user until Expires. A user has at most one ban.
type Ban struct {
	ID      int64     `json:"id" db:"id"`
	UserID  int64     `json:"user_id" db:"user_id"`
	Reason  string    `json:"reason" db:"reason"`
	Expires time.Time `json:"expires" db:"expires"`
}

// Active reports whether the ban is still in force at now
func (b *Ban) Active(now time.Time) bool {
	return b.Expires.After(now)
}

// Renew extends the ban by days. An active ban is extended from its
// current expiry; an expired one restarts from now. The new reason is
// appended on its own line.
func (b *Ban) Renew(reason string, days int, now time.Time) {
	from := now
	if b.Active(now) {
		from = b.Expires
	}
	b.Expires = from.AddDate(0, 0, days)
	if reason != "" {
		if b.Reason == "" {
			b.Reason = reason
		} else {
			b.Reason = b.Reason + "\n" + reason
		}
	}
}

// BanRequest is the payload for banning a user or renewing a ban
type BanRequest struct {
	Reason string `json:"reason" validate:"max=100"`
	Days   int    `json:"days" validate:"required,min=1,max=36500"`
}
