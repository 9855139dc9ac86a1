// Package cmd implements the qmod subcommands.
//
// Each command is a kong node with a Run(context.Context) error method.
// Commands read their sources through [Input], write results to the stream
// installed by [WithStreams] and parse with the options installed by
// [WithParseOptions].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file written by [Init].
	ConfigIdentifier = "config"

	// FetchBaseIdentifier is the kong variable identifier containing the
	// default base URL of [Fetch].
	FetchBaseIdentifier = "fetchBase"
)
