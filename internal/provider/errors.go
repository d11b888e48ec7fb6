package provider

import (
	"errors"
	"fmt"
)

// Kind is the broad class of a provider or engine failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport covers network and HTTP status failures.
	KindTransport
	// KindRemoteAPI is a structured error payload returned by the provider.
	KindRemoteAPI
	// KindParse is a malformed response body.
	KindParse
	// KindConfig is bad input: unknown provider, empty query, missing credential.
	KindConfig
	// KindNoResults is a well-formed but empty outcome.
	KindNoResults
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemoteAPI:
		return "remote api"
	case KindParse:
		return "parse"
	case KindConfig:
		return "configuration"
	case KindNoResults:
		return "no results"
	default:
		return "unknown"
	}
}

// Code refines KindConfig errors so callers can classify them without
// looking at message text.
type Code int

const (
	CodeNone Code = iota
	CodeMissingCredential
	CodeSearchUnsupported
	CodeHistoryUnsupported
	CodeWindowUnsupported
	CodeUnknownProvider
	CodeUnknownConfiguredProvider
	CodeNoProviders
	CodeInvalidInput
)

// Error is the error type returned across the provider boundary.
type Error struct {
	Kind     Kind
	Code     Code
	Provider string
	Msg      string
	Err      error
}

// ErrNoResults matches any error of KindNoResults via errors.Is.
var ErrNoResults = &Error{Kind: KindNoResults, Msg: "no results returned"}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Provider != "" && e.Kind != KindConfig {
		return e.Provider + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNoResults) match every no-results error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == ErrNoResults && e.Kind == KindNoResults
}

func Transport(providerName string, err error) *Error {
	return &Error{Kind: KindTransport, Provider: providerName, Msg: "HTTP request failed", Err: err}
}

func RemoteAPI(providerName, format string, args ...any) *Error {
	return &Error{Kind: KindRemoteAPI, Provider: providerName, Msg: fmt.Sprintf(format, args...)}
}

func Parse(providerName, what string, err error) *Error {
	return &Error{Kind: KindParse, Provider: providerName, Msg: "parsing " + what, Err: err}
}

func Config(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func NoResults(providerName string) *Error {
	return &Error{Kind: KindNoResults, Provider: providerName, Msg: "no results returned"}
}

// KindOf reports the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// CodeOf reports the configuration Code of err, or CodeNone.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeNone
}

// HasCode is a shorthand for KindConfig errors carrying code.
func HasCode(err error, code Code) bool {
	return KindOf(err) == KindConfig && CodeOf(err) == code
}
