// Package status decodes the codes returned by the task upsert routine.
package status

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

type Code int

const (
	CodeInternal        Code = -1
	CodeDuplicate       Code = 0
	CodeInserted        Code = 1
	CodeEmptyFields     Code = 2
	CodeMissingRelease  Code = 3
	CodeMissingWorker   Code = 4
	CodeMissingJob      Code = 5
	CodeMissingBusiness Code = 6
	CodeMissingMagazine Code = 7
	CodeUpdated         Code = 8

	// CodeUnknown marks an outcome the routine never produced: an
	// unrecognized result or a call that did not complete.
	CodeUnknown Code = math.MinInt32
)

var ErrUnrecognized = errors.New("unrecognized status code")

// Codes lists every value the upsert routine may return, in table order.
func Codes() []Code {
	return []Code{
		CodeInternal,
		CodeDuplicate,
		CodeInserted,
		CodeEmptyFields,
		CodeMissingRelease,
		CodeMissingWorker,
		CodeMissingJob,
		CodeMissingBusiness,
		CodeMissingMagazine,
		CodeUpdated,
	}
}

// Decode parses the routine's text result. Only the exact decimal spelling
// of a known code is accepted.
func Decode(raw string) (Code, error) {
	value, err := strconv.Atoi(raw)
	if err != nil || strconv.Itoa(value) != raw {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognized, raw)
	}
	code := Code(value)
	if code < CodeInternal || code > CodeUpdated {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognized, raw)
	}
	return code, nil
}

func (c Code) String() string {
	return strconv.Itoa(int(c))
}

type Category int

const (
	CategoryError Category = iota
	CategorySuccess
	CategoryRejected
)

func (c Category) String() string {
	switch c {
	case CategorySuccess:
		return "success"
	case CategoryRejected:
		return "rejected"
	default:
		return "error"
	}
}

type Reason string

const (
	ReasonInsert           Reason = "insert"
	ReasonUpdate           Reason = "update"
	ReasonDuplicate        Reason = "duplicate"
	ReasonValidation       Reason = "validation"
	ReasonMissingReference Reason = "missing-reference"
	ReasonInternal         Reason = "internal"
	ReasonUnrecognized     Reason = "unrecognized"
	ReasonCall             Reason = "call"
)

type Reference string

const (
	RefNone     Reference = ""
	RefRelease  Reference = "release"
	RefWorker   Reference = "worker"
	RefJob      Reference = "job"
	RefBusiness Reference = "business"
	RefMagazine Reference = "magazine"
)

type Outcome struct {
	Code      Code
	Category  Category
	Reason    Reason
	Reference Reference
	// Raw is set when the routine returned something outside the table.
	Raw       string
}

// Translate maps a decoded code to its outcome. It has no side effects.
func Translate(code Code) Outcome {
	out := Outcome{Code: code}
	switch code {
	case CodeInserted:
		out.Category, out.Reason = CategorySuccess, ReasonInsert
	case CodeUpdated:
		out.Category, out.Reason = CategorySuccess, ReasonUpdate
	case CodeDuplicate:
		out.Category, out.Reason = CategoryRejected, ReasonDuplicate
	case CodeEmptyFields:
		out.Category, out.Reason = CategoryRejected, ReasonValidation
	case CodeMissingRelease:
		out.Category, out.Reason, out.Reference = CategoryRejected, ReasonMissingReference, RefRelease
	case CodeMissingWorker:
		out.Category, out.Reason, out.Reference = CategoryRejected, ReasonMissingReference, RefWorker
	case CodeMissingJob:
		out.Category, out.Reason, out.Reference = CategoryRejected, ReasonMissingReference, RefJob
	case CodeMissingBusiness:
		out.Category, out.Reason, out.Reference = CategoryRejected, ReasonMissingReference, RefBusiness
	case CodeMissingMagazine:
		out.Category, out.Reason, out.Reference = CategoryRejected, ReasonMissingReference, RefMagazine
	case CodeInternal:
		out.Category, out.Reason = CategoryError, ReasonInternal
	default:
		out = Unrecognized(code.String())
	}
	return out
}

// Interpret decodes and translates in one step. Unknown text yields an
// unrecognized outcome together with an error wrapping ErrUnrecognized.
func Interpret(raw string) (Outcome, error) {
	code, err := Decode(raw)
	if err != nil {
		return Unrecognized(raw), err
	}
	return Translate(code), nil
}

func Unrecognized(raw string) Outcome {
	return Outcome{Code: CodeUnknown, Category: CategoryError, Reason: ReasonUnrecognized, Raw: raw}
}

// CallFailed is the outcome of an upsert that never returned a code.
func CallFailed() Outcome {
	return Outcome{Code: CodeUnknown, Category: CategoryError, Reason: ReasonCall}
}

// Known reports whether the outcome carries a code the routine returned.
func (o Outcome) Known() bool {
	return o.Code != CodeUnknown && o.Reason != ReasonUnrecognized
}

func (o Outcome) OK() bool {
	return o.Category == CategorySuccess
}

// Label is the compact category form, e.g. "rejected(missing-reference:job)".
func (o Outcome) Label() string {
	if o.Reference != RefNone {
		return fmt.Sprintf("%s(%s:%s)", o.Category, o.Reason, o.Reference)
	}
	return fmt.Sprintf("%s(%s)", o.Category, o.Reason)
}

// Message is the operator-facing text for the outcome.
func (o Outcome) Message() string {
	switch o.Reason {
	case ReasonInsert:
		return "insert succeeded"
	case ReasonUpdate:
		return "update succeeded"
	case ReasonDuplicate:
		return "record already exist"
	case ReasonValidation:
		return "empty or null fields"
	case ReasonMissingReference:
		switch o.Reference {
		case RefRelease:
			return "magazine release does not exist"
		case RefWorker:
			return "worker does not exist"
		case RefJob:
			return "job does not exist"
		case RefBusiness:
			return "newsstand does not exist"
		case RefMagazine:
			return "magazine does not exist"
		}
	case ReasonUnrecognized:
		return fmt.Sprintf("ERROR: unrecognized status %q", o.Raw)
	case ReasonCall:
		return "ERROR: database call failed"
	}
	return "ERROR"
}
