package diag

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/kurahaupo/libxstr/errors"
)

// ExitStatus is the process exit status used by the default fatal handler.
const ExitStatus = 88

// FatalHandler receives a contract violation. It must not return.
type FatalHandler func(*errors.Error)

var (
	handler   FatalHandler
	handlerMu sync.RWMutex

	// replaced in tests
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// SetFatalHandler installs h and returns a function restoring the previous
// handler. A nil h selects the default stderr-and-exit handler.
func SetFatalHandler(h FatalHandler) (restore func()) {
	handlerMu.Lock()
	prev := handler
	handler = h
	handlerMu.Unlock()

	return func() {
		handlerMu.Lock()
		handler = prev
		handlerMu.Unlock()
	}
}

// PanicHandler is a FatalHandler that panics with the error, so the
// violation can be recovered and inspected.
func PanicHandler(err *errors.Error) {
	panic(err)
}

// Fatal reports a contract violation and does not return.
func Fatal(err *errors.Error) {
	Logger().Error("xstr contract violation",
		zap.String("phase", string(err.Phase)),
		zap.String("kind", string(err.Kind)),
		zap.String("site", err.Site),
		zap.String("detail", err.Detail),
		zap.NamedError("cause", err.Cause),
	)

	handlerMu.RLock()
	h := handler
	handlerMu.RUnlock()
	if h == nil {
		h = defaultHandler
	}
	h(err)

	panic(err)
}

func defaultHandler(err *errors.Error) {
	fmt.Fprintln(stderr, FatalLine(err))
	_ = Logger().Sync()
	exit(ExitStatus)
}

// FatalLine formats err as the line the default handler prints.
func FatalLine(err *errors.Error) string {
	site := err.Site
	if site == "" {
		site = "?"
	}
	return fmt.Sprintf("PANIC %s XSTR: %s", site, message(err))
}

func message(err *errors.Error) string {
	msg := err.Detail
	if msg == "" {
		msg = string(err.Kind)
	}
	msg = fmt.Sprintf("%s: %s", err.Phase, msg)
	if err.Cause != nil {
		msg += "; " + err.Cause.Error()
	}
	return msg
}
