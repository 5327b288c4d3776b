package onesignal

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration      = errors.New("onesignal: invalid configuration")
	ErrMissingAppID       = fmt.Errorf("%w: app id is required", ErrConfiguration)
	ErrMissingRESTKey     = fmt.Errorf("%w: REST key is required", ErrConfiguration)
	ErrInvalidFormat      = errors.New("onesignal: notification is not a valid format")
	ErrContentRequired    = errors.New("onesignal: notification content is required")
	ErrNotificationNotSet = errors.New("onesignal: notification not set")
	ErrInvalidOptions     = errors.New("onesignal: options must be an object")
)
