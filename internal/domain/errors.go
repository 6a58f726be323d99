package domain

import "errors"

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream request failed")
	ErrFixture    = errors.New("fixture unavailable")
)
