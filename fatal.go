package xstr

import (
	"github.com/kurahaupo/libxstr/diag"
	"github.com/kurahaupo/libxstr/errors"
)

const pkgPath = "github.com/kurahaupo/libxstr"

// callSite is the file:line of the code that called into this package.
func callSite() string {
	return diag.CallSite(pkgPath, pkgPath+"/heap")
}

func fail(err *errors.Error) {
	if err.Site == "" {
		err.Site = callSite()
	}
	diag.Fatal(err)
}
