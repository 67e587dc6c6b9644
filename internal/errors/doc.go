// Package errors provides the small set of validation errors the
// geomorphology pipeline can raise before or after a run.
//
// # Core Type
//
//   - AppError: library-level error with a machine-readable code and message
//
// # Usage
//
//	if hm.Width <= 0 || hm.Height <= 0 {
//	    return errors.ErrInvalidDimensions
//	}
//
//	if err := validateAux(hm, aux); err != nil {
//	    return errors.Wrap(errors.ErrAuxMapMismatch, "hardness map", err)
//	}
package errors
