package errors

import (
	goerrors "errors"
	"fmt"
	"io"
	"runtime"
)

// Kind classifies a failure of an authentication flow.
// A Kind is itself an error so it can be used as an errors.Is target.
type Kind uint8

const (
	Unknown Kind = iota
	Configuration
	MissingCode
	TokenExchange
	IdentityFetch
	Transport
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration error"
	case MissingCode:
		return "missing authorization code"
	case TokenExchange:
		return "token exchange error"
	case IdentityFetch:
		return "identity fetch error"
	case Transport:
		return "transport error"
	default:
		return "unknown error"
	}
}

func (k Kind) Error() string {
	return k.String()
}

type Error struct {
	Kind     Kind
	Op       string
	Cause    error
	Location string
}

func Wrap(err error, skip int) error {
	if err == nil {
		return nil
	}

	c := &Error{
		Cause:    err,
		Location: getLocation(skip),
	}

	return c
}

func ConfigurationError(op string, cause error) error {
	return &Error{Kind: Configuration, Op: op, Cause: cause, Location: getLocation(0)}
}

func MissingCodeError(op string) error {
	return &Error{Kind: MissingCode, Op: op, Location: getLocation(0)}
}

func TokenExchangeError(op string, cause error) error {
	return &Error{Kind: TokenExchange, Op: op, Cause: cause, Location: getLocation(0)}
}

func IdentityFetchError(op string, cause error) error {
	return &Error{Kind: IdentityFetch, Op: op, Cause: cause, Location: getLocation(0)}
}

func TransportError(op string, cause error) error {
	return &Error{Kind: Transport, Op: op, Cause: cause, Location: getLocation(0)}
}

// KindOf returns the Kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	for goerrors.As(err, &e) {
		if e.Kind != Unknown {
			return e.Kind
		}
		err = e.Cause
	}
	return Unknown
}

func (w *Error) Error() string {
	var msg string
	switch {
	case w.Cause == nil:
		msg = w.Kind.String()
	case w.Kind == Unknown:
		msg = w.Cause.Error()
	default:
		msg = fmt.Sprintf("%s: %s", w.Kind, w.Cause)
	}
	if w.Op != "" {
		return w.Op + ": " + msg
	}
	return msg
}

func (f *Error) Unwrap() error {
	return f.Cause
}

func (f *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k != Unknown && k == f.Kind
}

// Format prints the message; %+v adds the location the error was created at.
func (f *Error) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+'):
		fmt.Fprintf(s, "%s\n\t%s", f.Error(), f.Location)
	case verb == 'q':
		fmt.Fprintf(s, "%q", f.Error())
	default:
		_, _ = io.WriteString(s, f.Error())
	}
}

func getLocation(skip int) string {
	_, file, line, _ := runtime.Caller(2 + skip)
	return fmt.Sprintf("%s:%d", file, line)
}
