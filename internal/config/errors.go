package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrQueueDirEmpty      = errors.New("queue_dir cannot be empty")
	ErrDefaultQueueEmpty  = errors.New("default_queue cannot be empty")
	ErrPriorityRange      = errors.New("default_priority must be between 0 and 100")
	ErrLockTimeout        = errors.New("lock_timeout_ms must be positive")
	ErrBadAutoAddPattern  = errors.New("invalid auto_add pattern")
)
