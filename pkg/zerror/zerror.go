package zerror

import "fmt"

// ZError is an application error with a transport-agnostic status, a stable
// machine-readable code and a message safe to show to callers.
//
// Values are immutable: WrapParent and WithMsg return modified copies, so
// predefined errors can be declared once as package variables.
type ZError struct {
	parent error
	status Status
	code   string
	msg    string
}

// NewZError builds a ZError. code is upper snake case, e.g. PRODUCT_NOT_FOUND.
func NewZError(parent error, status Status, code, msg string) ZError {
	return ZError{parent: parent, status: status, code: code, msg: msg}
}

func NewBadRequest(code, msg string) ZError {
	return NewZError(nil, StatusBadRequest, code, msg)
}

func NewValidationFailed(code, msg string) ZError {
	return NewZError(nil, StatusValidationFailed, code, msg)
}

func NewNotFound(code, msg string) ZError {
	return NewZError(nil, StatusNotFound, code, msg)
}

func NewConflict(code, msg string) ZError {
	return NewZError(nil, StatusConflict, code, msg)
}

func NewTooManyRequests(code, msg string) ZError {
	return NewZError(nil, StatusTooManyRequests, code, msg)
}

func NewInternalServerError(code, msg string) ZError {
	return NewZError(nil, StatusInternalServerError, code, msg)
}

func (e ZError) Error() string {
	s := fmt.Sprintf("%s [%s]: %s", e.code, e.status, e.msg)
	if e.parent != nil {
		s += ": " + e.parent.Error()
	}
	return s
}

// WrapParent returns a copy with parent as the underlying cause. A nil parent
// leaves e unchanged.
func (e ZError) WrapParent(parent error) ZError {
	if parent != nil {
		e.parent = parent
	}
	return e
}

// WithMsg returns a copy carrying a more specific message.
func (e ZError) WithMsg(msg string) ZError {
	e.msg = msg
	return e
}

func (e ZError) Unwrap() error { return e.parent }

// Is matches any ZError with the same code, so a predefined error still
// matches after WrapParent or WithMsg.
func (e ZError) Is(target error) bool {
	t, ok := target.(ZError)
	return ok && e.code == t.code
}

func (e ZError) Status() Status { return e.status }
func (e ZError) Code() string   { return e.code }
func (e ZError) Msg() string    { return e.msg }
func (e ZError) Parent() error  { return e.parent }
