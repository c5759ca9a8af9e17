package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// stackTrace returns the first stack trace found when unwrapping given
// error, or nil.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// trimInternal removes the frames that belong to this package or to the
// runtime, so that the first frame is where the error was created.
func trimInternal(st errors.StackTrace) errors.StackTrace {
	// Trim our internal parts here.
	// Manual error creation, or runtime for caught panics.
	for len(st) > 0 && matchesFunc(st[0],
		// where we create errors
		"timevault/errors.Wrap",
		"timevault/errors.Wrapf",
		"timevault/errors.(*Error).New",
		"timevault/errors.(*Error).Newf",
		"timevault/errors.Field",
		"timevault/errors.Recover",
		// runtime are added on panics
		"runtime.",
	) {
		st = st[1:]
	}
	// Trim out outer wrappers (runtime).
	for l := len(st) - 1; l > 0 && matchesFunc(st[l], "runtime."); l-- {
		st = st[:l]
	}
	return st
}

func matchesFunc(f errors.Frame, prefixes ...string) bool {
	name := funcName(f)
	for _, prefix := range prefixes {
		if strings.Contains(name, prefix) {
			return true
		}
	}
	return false
}

func funcName(f errors.Frame) string {
	// this looks a bit like magic, but follows
	// github.com/pkg/errors/stack.go
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

func fileLine(f errors.Frame) (string, int) {
	// this looks a bit like magic, but follows
	// github.com/pkg/errors/stack.go
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

func writeSimpleFrame(s io.Writer, f errors.Frame) {
	file, line := fileLine(f)
	// cut file at "github.com/"
	chunks := strings.SplitN(file, "github.com/", 2)
	if len(chunks) == 2 {
		file = chunks[1]
	}
	fmt.Fprintf(s, " [%s:%d]", file, line)
}

// Format works like pkg/errors, with additions.
//   %s is just the error message
//   %+v is the full stack trace
//   %v appends a compressed [filename:line] where the error
//      was created
func (e *wrappedError) Format(s fmt.State, verb rune) {
	// normal output here....
	if verb != 'v' {
		fmt.Fprint(s, e.Error())
		return
	}
	// work with the stack trace... whole or part
	stack := trimInternal(stackTrace(e))
	if s.Flag('+') {
		fmt.Fprintf(s, "%+v\n", stack)
		fmt.Fprint(s, e.Error())
	} else {
		fmt.Fprint(s, e.Error())
		if len(stack) > 0 {
			writeSimpleFrame(s, stack[0])
		}
	}
}
