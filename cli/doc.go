// Package cli contains the command line interface for qmod.
//
// # Usage
//
//	qmod [flags] <command> [args]
//
// With no command, qmod lists the items of the modules named on the command
// line, or of standard input:
//
//	qmod module1.txt
//	curl -s $URL | qmod
//
// The commands are defined in package [github.com/ardnew/qmod/cli/cmd].
//
// # Parser Options
//
//   - --strict: fail on text that is not part of any item
//   - --max-depth: maximum loop nesting depth, 0 for unlimited
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the user config
// directory ($XDG_CONFIG_HOME/qmod on Linux). YAML keys are flag names and
// nested mappings are joined with hyphens:
//
//	strict: true
//	log:
//	  level: debug
//	  format: json
//
// "qmod init" writes the current flag values to config.yaml. Command-line
// flags override config file values.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp layout (RFC3339, kitchen, none, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorize output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory, default ~/.cache/qmod/pprof
package cli
