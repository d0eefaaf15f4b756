package dataprocessing

import "errors"

// Pipeline terminal conditions
var (
	ErrNoSelection       = errors.New("no indicator selected")
	ErrInvalidRange      = errors.New("start year is after end year")
	ErrEmptyResult       = errors.New("selection returned no data")
	ErrAmbiguousBaseline = errors.New("ambiguous baseline")
	ErrInvalidParameter  = errors.New("invalid parameter")
)

// Snapshot loading errors
var (
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrDuplicateRow    = errors.New("duplicate observation")
	ErrUnknownParent   = errors.New("unknown parent series")
	ErrCategoryChanged = errors.New("category differs within series")
)

// ErrorKind classifies a pipeline error for callers that map it to a status
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNoSelection
	KindInvalidRange
	KindEmptyResult
	KindAmbiguousBaseline
	KindInvalidParameter
	KindInvalidData
)

var kindNames = map[ErrorKind]string{
	KindUnknown:           "unknown",
	KindNoSelection:       "no_selection",
	KindInvalidRange:      "invalid_range",
	KindEmptyResult:       "empty_result",
	KindAmbiguousBaseline: "ambiguous_baseline",
	KindInvalidParameter:  "invalid_parameter",
	KindInvalidData:       "invalid_data",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Classify returns the kind of a wrapped pipeline error
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNoSelection):
		return KindNoSelection
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrEmptyResult):
		return KindEmptyResult
	case errors.Is(err, ErrAmbiguousBaseline):
		return KindAmbiguousBaseline
	case errors.Is(err, ErrInvalidParameter):
		return KindInvalidParameter
	case errors.Is(err, ErrInvalidSnapshot),
		errors.Is(err, ErrDuplicateRow),
		errors.Is(err, ErrUnknownParent),
		errors.Is(err, ErrCategoryChanged):
		return KindInvalidData
	default:
		return KindUnknown
	}
}
