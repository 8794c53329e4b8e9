package models

// ResultStatus distinguishes "not yet attempted" from "in progress" from the
// two terminal outcomes. UI and retry logic both depend on all four.
type ResultStatus int

const (
	StatusIdle ResultStatus = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// ApiResult is a four-state tagged result for an asynchronous operation.
// The zero value is the Idle state.
type ApiResult[T any] struct {
	status ResultStatus
	value  T
	err    error
}

func Idle[T any]() ApiResult[T] {
	return ApiResult[T]{status: StatusIdle}
}

func Loading[T any]() ApiResult[T] {
	return ApiResult[T]{status: StatusLoading}
}

func Success[T any](v T) ApiResult[T] {
	return ApiResult[T]{status: StatusSuccess, value: v}
}

func Failure[T any](err error) ApiResult[T] {
	return ApiResult[T]{status: StatusError, err: err}
}

func (r ApiResult[T]) Status() ResultStatus { return r.status }

// Value returns the payload; valid only in the Success state.
func (r ApiResult[T]) Value() T { return r.value }

// Err returns the failure; valid only in the Error state.
func (r ApiResult[T]) Err() error { return r.err }

// Match calls exactly one of the handlers for the result's state.
// Nil handlers are skipped.
func (r ApiResult[T]) Match(onIdle, onLoading func(), onSuccess func(T), onError func(error)) {
	switch r.status {
	case StatusLoading:
		if onLoading != nil {
			onLoading()
		}
	case StatusSuccess:
		if onSuccess != nil {
			onSuccess(r.value)
		}
	case StatusError:
		if onError != nil {
			onError(r.err)
		}
	default:
		if onIdle != nil {
			onIdle()
		}
	}
}
