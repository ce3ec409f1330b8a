package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")

	// Token related errors
	ErrTokenEmpty                = errors.New("token is empty")
	ErrTokenExpired              = errors.New("token expired")
	ErrTokenMalformed            = errors.New("token is malformed")
	ErrTokenUnsupportedAlgorithm = errors.New("token signing algorithm is not supported")
	ErrTokenSignatureInvalid     = errors.New("token signature is invalid")

	// Principal resolution errors
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrPrincipalInactive = errors.New("principal is inactive")
	ErrPrincipalNoRole   = errors.New("principal has no role")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
