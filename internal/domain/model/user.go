package model

import (
	"time"
)

// User is a domain entity representing a Telegram user known to the bot.
// One record exists per Telegram ID; records are never deleted, only merged.
type User struct {
	TelegramID      int64             `json:"telegram_id"`
	ChatID          int64             `json:"chat_id"`
	FirstName       string            `json:"first_name,omitempty"`
	Username        string            `json:"username,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	ReferralCode    string            `json:"referral_code,omitempty"`
	Verified        bool              `json:"verified,omitempty"`
	Profile         map[string]string `json:"profile,omitempty"`
	FirstSeenAt     time.Time         `json:"first_seen_at"`
	LastInteraction time.Time         `json:"last_interaction"`
}

// NewUser creates a fresh record for a first-time interaction.
func NewUser(tgID, chatID int64) *User {
	return &User{TelegramID: tgID, ChatID: chatID, Profile: map[string]string{}}
}

// Merge folds the non-zero fields of p into u. Fields that p leaves at
// their zero value keep whatever u already recorded, so calling Merge on
// every inbound event never erases previously collected data. Profile
// entries merge key by key, later values winning.
func (u *User) Merge(p *User) {
	if p == nil {
		return
	}
	if p.ChatID != 0 {
		u.ChatID = p.ChatID
	}
	if p.FirstName != "" {
		u.FirstName = p.FirstName
	}
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Phone != "" {
		u.Phone = p.Phone
	}
	if p.ReferralCode != "" {
		u.ReferralCode = p.ReferralCode
	}
	if p.Verified {
		u.Verified = true
	}
	if len(p.Profile) > 0 {
		if u.Profile == nil {
			u.Profile = make(map[string]string, len(p.Profile))
		}
		for k, v := range p.Profile {
			u.Profile[k] = v
		}
	}
}

// Touch refreshes the last-interaction timestamp.
func (u *User) Touch(now time.Time) { u.LastInteraction = now }

func (u *User) IsZero() bool { return u == nil || u.TelegramID == 0 }

// DisplayName is what menus greet the user with.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "Player"
}
