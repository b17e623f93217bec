package status

import "errors"

var (
	ErrNotConfigured      = errors.New("sheets: spreadsheet id is not configured")
	ErrSheetUnavailable   = errors.New("sheets: could not load data, verify the sheet is public")
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrSessionExpired     = errors.New("auth: session not found or expired")
	ErrEventNotFound      = errors.New("events: event not found")
	ErrPurchaseNotFound   = errors.New("purchases: purchase not found")
)
