package translation

import "fmt"

// Failure describes a translation that did not produce text
type Failure struct {
	Cause   error
	Partial string
}

// Error renders the cause followed by the partial result, which is usually empty
func (f *Failure) Error() string {
	return fmt.Sprintf("%v：%s", f.Cause, f.Partial)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Result holds either the translated text or a failure
type Result struct {
	Text    string
	Failure *Failure
}

// OK reports whether the translation succeeded
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Tuple returns (true, text) on success and (false, diagnostic) on failure
func (r Result) Tuple() (bool, string) {
	if r.Failure != nil {
		return false, r.Failure.Error()
	}
	return true, r.Text
}
