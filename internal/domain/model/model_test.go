//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"telegram-bingo-bot/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	u := NewUser(12345, 678)
	if u.TelegramID != 12345 || u.ChatID != 678 {
		t.Fatalf("user = %+v", u)
	}
	if u.Profile == nil {
		t.Fatal("expected empty profile map, got nil")
	}
}

func TestUserMerge(t *testing.T) {
	t.Run("zero values never erase stored fields", func(t *testing.T) {
		u := NewUser(1, 10)
		u.FirstName = "Abebe"
		u.Username = "abebe_b"
		u.Phone = "+251911000000"
		u.Verified = true

		u.Merge(NewUser(1, 0))

		if u.FirstName != "Abebe" || u.Username != "abebe_b" || u.Phone != "+251911000000" {
			t.Fatalf("fields erased: %+v", u)
		}
		if !u.Verified {
			t.Fatal("verified flag was reset")
		}
		if u.ChatID != 10 {
			t.Fatalf("chat id erased: %d", u.ChatID)
		}
	})

	t.Run("later explicit values win", func(t *testing.T) {
		u := NewUser(1, 10)
		u.FirstName = "Abebe"

		p := NewUser(1, 11)
		p.FirstName = "Kebede"
		u.Merge(p)

		if u.FirstName != "Kebede" || u.ChatID != 11 {
			t.Fatalf("user = %+v", u)
		}
	})

	t.Run("profile merges per key", func(t *testing.T) {
		u := NewUser(1, 10)
		u.Profile["lang"] = "am"

		p := NewUser(1, 10)
		p.Profile["city"] = "Addis"
		u.Merge(p)

		if u.Profile["lang"] != "am" || u.Profile["city"] != "Addis" {
			t.Fatalf("profile = %v", u.Profile)
		}
	})

	t.Run("verified only latches true", func(t *testing.T) {
		u := NewUser(1, 10)
		u.Verified = true
		u.Merge(NewUser(1, 10))
		if !u.Verified {
			t.Fatal("verified flag was reset by unverified partial")
		}
	})
}

func TestUserTouch(t *testing.T) {
	u := NewUser(1, 10)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	u.Touch(now)
	if !u.LastInteraction.Equal(now) {
		t.Fatalf("LastInteraction = %v", u.LastInteraction)
	}
}

func TestUserDisplayName(t *testing.T) {
	u := NewUser(1, 10)
	if got := u.DisplayName(); got != "Player" {
		t.Fatalf("DisplayName() = %q", got)
	}
	u.FirstName = "Abebe"
	if got := u.DisplayName(); got != "Abebe" {
		t.Fatalf("DisplayName() = %q", got)
	}
}

// --- Broadcast Model Tests ---

func TestButtonValidate(t *testing.T) {
	cases := []struct {
		name    string
		btn     Button
		wantErr bool
	}{
		{"url button", NewURLButton("Open", "https://example.com"), false},
		{"web app button", NewWebAppButton("Play", "https://example.com"), false},
		{"callback button", NewCallbackButton("Back", "main_menu"), false},
		{"no action", Button{Label: "Empty"}, true},
		{"two actions", Button{Label: "Both", URL: "u", CallbackToken: "c"}, true},
		{"all actions", Button{Label: "All", URL: "u", WebAppURL: "w", CallbackToken: "c"}, true},
		{"missing label", Button{URL: "https://example.com"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.btn.Validate()
			if tc.wantErr && !errors.Is(err, domain.ErrInvalidButton) {
				t.Fatalf("expected ErrInvalidButton, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBroadcastValidate(t *testing.T) {
	t.Run("text only is valid", func(t *testing.T) {
		b := Broadcast{Text: "hello"}
		if err := b.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("image only is valid", func(t *testing.T) {
		b := Broadcast{ImageRef: "https://files.example.com/a.png"}
		if err := b.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.HasImage() {
			t.Fatal("HasImage() = false")
		}
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		var b Broadcast
		if err := b.Validate(); !errors.Is(err, domain.ErrEmptyBroadcast) {
			t.Fatalf("expected ErrEmptyBroadcast, got %v", err)
		}
	})

	t.Run("invalid button rejected", func(t *testing.T) {
		b := Broadcast{Text: "x", Buttons: []Button{{Label: "bad"}}}
		if err := b.Validate(); !errors.Is(err, domain.ErrInvalidButton) {
			t.Fatalf("expected ErrInvalidButton, got %v", err)
		}
	})
}
