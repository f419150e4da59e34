package chat

import "errors"

// Chat integration errors.
var (
	ErrDisabled        = errors.New("chat integration disabled")
	ErrNotConfigured   = errors.New("chat integration missing bot token or channel")
	ErrNoStatusMessage = errors.New("no status message recorded")
)
