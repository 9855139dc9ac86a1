// Package profile provides optional runtime profiling for qmod.
//
// It wraps [github.com/pkg/profile] behind the "pprof" build tag. Without the
// tag every operation is a no-op and the dependency is not linked.
//
//	p := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	).Start()
//	defer p.Stop()
//
// The qmod command exposes the same settings as --pprof-mode and --pprof-dir
// when built with the tag:
//
//	go build -tags pprof .
//	qmod --pprof-mode=cpu bench module1.txt
//	go tool pprof -http=: ~/.cache/qmod/pprof/cpu.pprof
//
// Building with the tag also registers the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
