// Package services defines the business logic for membership gating, video
// publishing, and bot administration. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing Telegram messages is performed at the dispatcher layer.
package services

import "errors"

// Gating errors.
var (
	// ErrBanned indicates that the requesting user carries a ban record and
	// must receive no further responses.
	ErrBanned = errors.New("user is banned")

	// ErrRateLimited is returned when a fresh video request arrives inside
	// the per-user cooldown window.
	ErrRateLimited = errors.New("request inside cooldown window")

	// ErrVideoNotFound indicates that no video is registered under the
	// requested short code.
	ErrVideoNotFound = errors.New("video not found")
)

// Administration errors.
var (
	// ErrChannelExists is returned when adding a channel whose username is
	// already registered.
	ErrChannelExists = errors.New("channel already exists")

	// ErrChannelNotFound indicates that the named channel is not registered
	// or is already inactive.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrNotBanned is returned when unbanning a user who has no ban record.
	ErrNotBanned = errors.New("user is not banned")

	// ErrUnauthorized is returned when a non-admin invokes an admin-only
	// operation.
	ErrUnauthorized = errors.New("not authorized")
)

// Publishing errors.
var (
	// ErrCodeExhausted is returned when short-code generation keeps
	// colliding after the bounded number of retries.
	ErrCodeExhausted = errors.New("could not allocate a unique short code")
)
