package domain

import "errors"

var (
	// ErrConfigLoad means the rules or word file is missing, unreadable or malformed.
	ErrConfigLoad = errors.New("config load")
	// ErrGeneration means the word source lacks a required length bucket.
	ErrGeneration = errors.New("puzzle generation")
	// ErrIntegrity means the store cannot produce a unique earliest date.
	ErrIntegrity = errors.New("store integrity")
	// ErrNotFound means there is no puzzle for the requested date.
	ErrNotFound = errors.New("puzzle not found")
	// ErrRange means a batch start date falls after its end date.
	ErrRange = errors.New("invalid date range")
)
