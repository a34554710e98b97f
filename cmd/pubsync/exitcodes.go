package main

// Exit codes returned by the CLI.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing credentials, bad config file)
	ExitDataError   = 3 // Data error (invalid DOI, publication that cannot be resolved)
)
