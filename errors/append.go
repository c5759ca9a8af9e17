package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
// If no error is passed, nil is returned. If only a single non-nil
// error is passed, it is returned unchanged.
//
// The result is consistent with the fail-fast approach: the ABCI code of
// the collection is the code of the first error.
func Append(errs ...error) error {
	var res errorList
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		// Flatten nested lists so that Unpack returns every error
		// on a single level.
		if l, ok := e.(errorList); ok {
			res = append(res, l...)
			continue
		}
		res = append(res, e)
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// unpacker is implemented by an error that is a collection of errors.
type unpacker interface {
	Unpack() []error
}

type errorList []error

var (
	_ unpacker = errorList(nil)
	_ coder    = errorList(nil)
	_ causer   = errorList(nil)
)

func (list errorList) Error() string {
	if len(list) == 1 {
		return list[0].Error()
	}
	points := make([]string, len(list))
	for i, err := range list {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(list), strings.Join(points, "\n\t"))
}

// Unpack implements unpacker.
func (list errorList) Unpack() []error {
	return []error(list)
}

// ABCICode returns the code of the first error.
func (list errorList) ABCICode() uint32 {
	if len(list) == 0 {
		return SuccessABCICode
	}
	return abciCode(list[0])
}

// Cause returns the first error of the list.
func (list errorList) Cause() error {
	if len(list) == 0 {
		return nil
	}
	return list[0]
}
