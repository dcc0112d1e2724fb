package services

import "errors"

type userMessager interface {
	UserMessage() string
}

// UserMessage returns the human-readable part of err: the upstream detail
// when an adapter supplied one, otherwise the full error text.
func UserMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
