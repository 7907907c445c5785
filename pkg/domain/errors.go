package domain

import "errors"

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrProfileNotFound    = errors.New("profile not found")
)

// Organization errors
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrNotOrganizationOwner = errors.New("caller is not the organization owner")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrMemberAlreadyExists  = errors.New("user is already a member of this organization")
)

// Invitation errors
var (
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
)

// Policy errors
var (
	ErrPolicyNotFound = errors.New("policy not found")
)

// Billing errors
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNoBillingCustomer    = errors.New("no billing customer for user")
)
