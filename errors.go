/*
Copyright © 2026 the HCME authors.
This file is part of HCME.

HCME is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HCME is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.
*/

package hcme

import "fmt"

// ErrorCode classifies the failure modes a Compute run can return.
type ErrorCode int

const (
	// ErrInvalidInput means a field-level validation failure: missing
	// required data or a value out of its documented range.
	ErrInvalidInput ErrorCode = iota
	// ErrInfeasibleSource means the source geometry cannot produce a
	// physical release (e.g. tank pressure at or below ambient).
	ErrInfeasibleSource
	// ErrChemicalOutOfEnvelope means a requested (T, x) pair falls
	// outside a chemical property's stored coefficient envelope.
	ErrChemicalOutOfEnvelope
	// ErrNumerical means a non-finite value was encountered during
	// integration.
	ErrNumerical
	// ErrCancelled means cooperative cancellation was observed.
	ErrCancelled
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidInput:
		return "InvalidInput"
	case ErrInfeasibleSource:
		return "InfeasibleSource"
	case ErrChemicalOutOfEnvelope:
		return "ChemicalOutOfEnvelope"
	case ErrNumerical:
		return "Numerical"
	case ErrCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// EngineError is the error type returned by Compute. Every failure mode
// enumerated in the engine's error taxonomy implements this interface;
// there are no panics for user-input-shaped problems.
type EngineError interface {
	error
	Code() ErrorCode
}

type engineError struct {
	code ErrorCode
	msg  string
}

func (e *engineError) Error() string  { return e.msg }
func (e *engineError) Code() ErrorCode { return e.code }

// InvalidInputError reports a field-level violation, with the dotted path
// to the offending field (e.g. "scenario.tank.pressure").
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input at %s: %s", e.Field, e.Reason)
}

// Code implements EngineError.
func (e *InvalidInputError) Code() ErrorCode { return ErrInvalidInput }

// NewInfeasibleSourceError reports that the source geometry produces no
// physical release.
func NewInfeasibleSourceError(reason string) EngineError {
	return &engineError{code: ErrInfeasibleSource, msg: "infeasible source: " + reason}
}

// NewChemicalOutOfEnvelopeError reports that a requested (T, x) pair falls
// outside a chemical property's coefficient envelope.
func NewChemicalOutOfEnvelopeError(property string, t float64) EngineError {
	return &engineError{
		code: ErrChemicalOutOfEnvelope,
		msg:  fmt.Sprintf("chemical property %q not in range at T=%g K", property, t),
	}
}

// NewNumericalError reports a non-finite value encountered mid-computation.
func NewNumericalError(stage string) EngineError {
	return &engineError{code: ErrNumerical, msg: "numerical failure during " + stage}
}

// NewCancelledError reports cooperative cancellation.
func NewCancelledError() EngineError {
	return &engineError{code: ErrCancelled, msg: "run cancelled"}
}
