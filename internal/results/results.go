// Package results carries the success-or-failure envelope returned by
// service operations. Business failures travel as payloads, not errors;
// a non-nil error means infrastructure broke.
package results

// OperationResult holds either a success payload or a failure payload.
// Both nil means the operation produced nothing (panic recovery path).
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

func Success[S any, F any](payload S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &payload}
}

func Failure[S any, F any](payload F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &payload}
}

func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}
