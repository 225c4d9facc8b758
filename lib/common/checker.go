package common

type Checker interface {
	GetFuncs() []CheckerFunc
}

type CheckerDeferFunc func(int, Checker, error)

var DefaultDeferFunc CheckerDeferFunc = func(int, Checker, error) {}

type CheckerFunc func(Checker, ...interface{}) error

type DefaultChecker struct {
	Funcs []CheckerFunc
}

func (c *DefaultChecker) GetFuncs() []CheckerFunc {
	return c.Funcs
}

// CheckerErrorStop can be used to stop `RunChecker` without error; the
// remaining funcs are skipped and `RunChecker` returns nil.
type CheckerErrorStop struct {
	Message string
}

func NewCheckerErrorStop(message string) CheckerErrorStop {
	return CheckerErrorStop{Message: message}
}

func (c CheckerErrorStop) Error() string {
	return c.Message
}

func RunChecker(checker Checker, deferFunc CheckerDeferFunc, args ...interface{}) error {
	if deferFunc == nil {
		deferFunc = DefaultDeferFunc
	}

	var err error
	for i, f := range checker.GetFuncs() {
		if err = f(checker, args...); err != nil {
			deferFunc(i, checker, err)
			if _, ok := err.(CheckerErrorStop); ok {
				return nil
			}
			return err
		}
		deferFunc(i, checker, err)
	}
	return nil
}
