// Package apperr defines the error kinds that cross the HTTP boundary.
//
// Domain packages return sentinel errors or wrap them; handlers classify the
// result into a Kind with New or Wrap, and httputil.WriteAppError maps the
// Kind to a status code. Caller faults (4xx) carry a message that is safe to
// return in the response body. Operator faults (5xx) respond with a generic
// message and the wrapped cause is only logged.
package apperr
