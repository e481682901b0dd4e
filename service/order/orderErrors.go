package ordersvc

import (
	"errors"
	"fmt"
	"strings"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidNetwork     ErrCode = "INVALID_NETWORK"
	ErrAccessDenied       ErrCode = "ACCESS_DENIED"
	ErrVariantUnavailable ErrCode = "VARIANT_UNAVAILABLE"
	ErrInvalidBeneficiary ErrCode = "INVALID_BENEFICIARY"
	ErrInsufficientFunds  ErrCode = "INSUFFICIENT_FUNDS"
	ErrEmptyBatch         ErrCode = "EMPTY_BATCH"
)

type codedError struct {
	code  ErrCode
	msg   string
	cause error
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode) error { return codedError{code: c} }

// EmptyBatchError is the rejection for a submission with no entries; the
// cart reports an empty checkout the same way.
func EmptyBatchError() error { return makeErr(ErrEmptyBatch) }

func wrapErr(c ErrCode, msg string, cause error) error {
	return codedError{code: c, msg: msg, cause: cause}
}

// Code extracts the workflow error code, or "" for internal faults.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Message is the user-facing text for a workflow error. Access denials carry
// their tier-naming message; the rest use the fixed API wording.
func Message(err error) string {
	var ce codedError
	if errors.As(err, &ce) && ce.msg != "" {
		return ce.msg
	}
	switch Code(err) {
	case ErrInvalidNetwork:
		return "Invalid network ID"
	case ErrInsufficientFunds:
		return "Insufficient wallet balance"
	case ErrInvalidBeneficiary:
		return "Invalid beneficiary number"
	case ErrVariantUnavailable:
		return "Selected bundle is unavailable"
	case ErrEmptyBatch:
		return "No order entries provided"
	}
	return "internal error"
}

// LineFailure reports one rejected entry of a batch submission.
type LineFailure struct {
	Index  int    `json:"index"`
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

// BatchError rejects a whole batch: any single bad line fails the
// submission and nothing is persisted.
type BatchError struct {
	Failures []LineFailure
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("entry %d (%s): %s", f.Index, f.Entry, f.Reason)
	}
	return "invalid batch entries: " + strings.Join(parts, "; ")
}
