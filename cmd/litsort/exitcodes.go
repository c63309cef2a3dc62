package main

// Exit codes shared by all commands
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure, interrupted batch)
	ExitConfigError = 2 // Configuration error (missing credential, unknown dimension or source)
	ExitDataError   = 3 // Data error (missing directory, missing or malformed ledger)
)
