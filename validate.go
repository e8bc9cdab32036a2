package rlisp

// Validate rejects structurally invalid forms before evaluation.
func Validate(forms ...*Form) error {
	for _, f := range forms {
		if err := validate(f); err != nil {
			return err
		}
	}
	return nil
}

func validate(f *Form) error {
	if f.Atom {
		return nil
	}
	if len(f.Items) == 0 {
		return newError(SyntaxError, "empty expression", f)
	}
	if f.Head() == "fun" { // legacy spelling; defun is not checked
		if n := len(f.Items); n != 3 && n != 4 {
			return newError(SyntaxError, "malformed function", f)
		}
		return nil
	}
	for _, x := range f.Items {
		if err := validate(x); err != nil {
			return err
		}
	}
	return nil
}
