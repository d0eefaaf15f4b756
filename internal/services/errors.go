package services

import "errors"

// Service errors
var (
	ErrNoTableLoaded     = errors.New("no observation table loaded")
	ErrUnknownSeriesType = errors.New("unknown series type")
)
