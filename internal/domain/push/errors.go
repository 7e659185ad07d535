package push

import "errors"

var (
	ErrTokenNotFound   = errors.New("push token not found")
	ErrInvalidPlatform = errors.New("platform must be ios or android")
)
