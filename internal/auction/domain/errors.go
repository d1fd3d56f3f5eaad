package domain

import "errors"

var (
	ErrItemNotFound = errors.New("auction item not found")
	ErrBidTooLow    = errors.New("bid amount is too low")
)
