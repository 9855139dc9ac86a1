package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/qmod/cli/cmd"
	"github.com/ardnew/qmod/fetch"
	"github.com/ardnew/qmod/lang"
	"github.com/ardnew/qmod/pkg"
)

// CLI is the top-level command-line interface for qmod.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Strict   bool `help:"Fail on text that is not part of any item."`
	MaxDepth int  `default:"${maxDepth}" help:"Maximum loop nesting depth (0 for unlimited)." placeholder:"N"`

	Parse   cmd.Parse   `cmd:"" default:"withargs" help:"List the items of modules"`
	Fmt     cmd.Fmt     `cmd:""                    help:"Format modules"`
	Tree    cmd.Tree    `cmd:""                    help:"Show the item tree of modules"`
	Find    cmd.Find    `cmd:""                    help:"Fuzzy-search question headers"`
	Select  cmd.Select  `cmd:""                    help:"Select items matching an expression"`
	Fetch   cmd.Fetch   `cmd:""                    help:"Fetch and parse remote modules"`
	Bench   cmd.Bench   `cmd:""                    help:"Measure parse time"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
	Version cmd.Version `cmd:""                    help:"Print version"`
}

// Run executes the qmod CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier:    configFilePath + ".yaml",
		cmd.CacheIdentifier:     cacheDir(),
		cmd.FetchBaseIdentifier: fetch.DefaultBaseURL,
		"maxDepth":              strconv.Itoa(lang.DefaultMaxDepth),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath+".yaml", configFilePath+".yml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithParseOptions(ctx,
		lang.WithStrict(cli.Strict),
		lang.WithMaxDepth(cli.MaxDepth),
	)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
