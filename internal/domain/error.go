package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrBroadcastNotFound = errors.New("broadcast not found or expired")
	ErrReferralNotFound  = errors.New("no referral code staged")
	ErrUnauthorized      = errors.New("caller is not an administrator")
	ErrEmptyBroadcast    = errors.New("broadcast needs at least text or an image")
	ErrInvalidButton     = errors.New("button must declare exactly one action")
	ErrInvalidArgument   = errors.New("invalid argument")
)
