package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ardnew/qmod/pkg"
)

// Version prints the program version.
type Version struct {
	Verbose bool `help:"Include Go toolchain and platform." short:"v"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	name := pkg.Name
	if ktx := kongContextFrom(ctx); ktx != nil {
		name = ktx.Model.Name
	}

	var err error
	if v.Verbose {
		_, err = fmt.Fprintf(stdout(ctx), "%s %s (%s %s/%s)\n",
			name, pkg.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	} else {
		_, err = fmt.Fprintf(stdout(ctx), "%s %s\n", name, pkg.Version)
	}

	if err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}
