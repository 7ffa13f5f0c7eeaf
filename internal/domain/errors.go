package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidSchema   = errors.New("invalid canvas schema")
	ErrAssetFetch      = errors.New("asset fetch failed")
	ErrPhotoFetch      = errors.New("photo fetch failed")
	ErrFontUnavailable = errors.New("font unavailable")
	ErrSchemaPersist   = errors.New("schema persist failed")
	ErrSessionFinished = errors.New("session finished")
	ErrSessionBusy     = errors.New("session busy")
)
