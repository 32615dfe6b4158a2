package diagnostics

import "errors"

// HardError unwinds the checking of the current file. It is raised with panic
// and recovered at the file boundary by the pipeline.
type HardError struct {
	Diag *Diagnostic
}

func (e *HardError) Error() string {
	return e.Diag.String()
}

// Abort marks diag fatal and unwinds the current file
func Abort(diag *Diagnostic) {
	diag.Fatal = true
	panic(&HardError{Diag: diag})
}

// AsHardError reports whether a recovered value is a hard error
func AsHardError(recovered any) (*HardError, bool) {
	if recovered == nil {
		return nil, false
	}
	if he, ok := recovered.(*HardError); ok {
		return he, true
	}
	if err, ok := recovered.(error); ok {
		var he *HardError
		if errors.As(err, &he) {
			return he, true
		}
	}
	return nil, false
}
