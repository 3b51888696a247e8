package model

import (
	"time"

	"telegram-bingo-bot/internal/domain"
)

// Button is a tagged variant: a label plus exactly one action. Which of
// the three action fields is set decides how the delivery layer renders it.
type Button struct {
	Label         string `json:"label"`
	URL           string `json:"url,omitempty"`
	WebAppURL     string `json:"web_app_url,omitempty"`
	CallbackToken string `json:"callback_token,omitempty"`
}

func NewURLButton(label, url string) Button { return Button{Label: label, URL: url} }
func NewWebAppButton(label, url string) Button { return Button{Label: label, WebAppURL: url} }
func NewCallbackButton(label, tok string) Button {
	return Button{Label: label, CallbackToken: tok}
}

// Validate enforces the exactly-one-action invariant.
func (b Button) Validate() error {
	if b.Label == "" {
		return domain.ErrInvalidButton
	}
	n := 0
	if b.URL != "" {
		n++
	}
	if b.WebAppURL != "" {
		n++
	}
	if b.CallbackToken != "" {
		n++
	}
	if n != 1 {
		return domain.ErrInvalidButton
	}
	return nil
}

// Broadcast is a staged message awaiting admin confirmation. Payloads are
// kept indefinitely keyed by ID; restaging the same ID overwrites.
type Broadcast struct {
	ID       string    `json:"id"`
	Text     string    `json:"text,omitempty"`
	ImageRef string    `json:"image,omitempty"`
	Buttons  []Button  `json:"buttons,omitempty"`
	StagedAt time.Time `json:"staged_at"`
}

// Validate checks the payload is deliverable: at least one of text/image,
// and every button well formed. Called at the boundary where a payload
// first enters the system.
func (b *Broadcast) Validate() error {
	if b.Text == "" && b.ImageRef == "" {
		return domain.ErrEmptyBroadcast
	}
	for _, btn := range b.Buttons {
		if err := btn.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasImage reports whether delivery should use the photo path.
func (b *Broadcast) HasImage() bool { return b.ImageRef != "" }

// BroadcastReport is the per-execution accounting returned to the admin.
type BroadcastReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}
