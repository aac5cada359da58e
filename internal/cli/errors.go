package cli

import "errors"

// Error variables for command-line handling.
var (
	ErrNoCommand         = errors.New("no command provided")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrLinkRequired      = errors.New("link is required")
	ErrFileRequired      = errors.New("note file is required")
	ErrQueueNameRequired = errors.New("queue name is required")
	ErrBlockRequired     = errors.New("pass either a block id or --line")
	ErrNothingToEdit     = errors.New("nothing to edit: pass --priority, --notes or --date")
	ErrPriorityNeedsDate = errors.New("--priority requires --date")
	ErrTooManyArgs       = errors.New("too many arguments")
	errNoAutoAdd         = errors.New("no auto_add patterns configured (set auto_add or pass --pattern)")
)
