package diag

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const maxFrames = 32

// CallSite returns "file:line" of the nearest caller whose function is not
// in one of the given packages. Test files always count as callers, so a
// package's own tests report their own lines. Returns "" if no such frame.
func CallSite(pkgs ...string) string {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	for {
		f, more := frames.Next()
		if f.Function != "" && (strings.HasSuffix(f.File, "_test.go") || !inPackages(f.Function, pkgs)) {
			return filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
		}
		if !more {
			return ""
		}
	}
}

// inPackages reports whether fn (a fully qualified function name such as
// "example.com/a/b.(*T).M") belongs directly to one of pkgs.
func inPackages(fn string, pkgs []string) bool {
	for _, p := range pkgs {
		if strings.HasPrefix(fn, p+".") {
			return true
		}
	}
	return strings.HasPrefix(fn, thisPackage+".")
}

const thisPackage = "github.com/kurahaupo/libxstr/diag"
