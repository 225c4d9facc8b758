package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testChecker struct {
	DefaultChecker

	ran []string
}

func TestRunCheckerRunsAllFuncs(t *testing.T) {
	checker := &testChecker{
		DefaultChecker: DefaultChecker{Funcs: []CheckerFunc{
			func(c Checker, args ...interface{}) error {
				c.(*testChecker).ran = append(c.(*testChecker).ran, "first")
				return nil
			},
			func(c Checker, args ...interface{}) error {
				c.(*testChecker).ran = append(c.(*testChecker).ran, "second")
				return nil
			},
		}},
	}

	err := RunChecker(checker, DefaultDeferFunc)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, checker.ran)
}

func TestRunCheckerStopsOnError(t *testing.T) {
	expected := errors.New("boom")
	checker := &testChecker{
		DefaultChecker: DefaultChecker{Funcs: []CheckerFunc{
			func(c Checker, args ...interface{}) error {
				c.(*testChecker).ran = append(c.(*testChecker).ran, "first")
				return expected
			},
			func(c Checker, args ...interface{}) error {
				c.(*testChecker).ran = append(c.(*testChecker).ran, "second")
				return nil
			},
		}},
	}

	err := RunChecker(checker, DefaultDeferFunc)
	require.Equal(t, expected, err)
	require.Equal(t, []string{"first"}, checker.ran)
}

func TestRunCheckerErrorStop(t *testing.T) {
	checker := &testChecker{
		DefaultChecker: DefaultChecker{Funcs: []CheckerFunc{
			func(c Checker, args ...interface{}) error {
				return NewCheckerErrorStop("this checker should be stopped")
			},
			func(c Checker, args ...interface{}) error {
				c.(*testChecker).ran = append(c.(*testChecker).ran, "second")
				return nil
			},
		}},
	}

	err := RunChecker(checker, DefaultDeferFunc)
	require.NoError(t, err)
	require.Empty(t, checker.ran)
}

func TestRunCheckerDeferFuncSeesError(t *testing.T) {
	expected := errors.New("boom")
	var got []error
	deferFunc := func(n int, c Checker, err error) {
		got = append(got, err)
	}

	checker := &testChecker{
		DefaultChecker: DefaultChecker{Funcs: []CheckerFunc{
			func(c Checker, args ...interface{}) error { return nil },
			func(c Checker, args ...interface{}) error { return expected },
		}},
	}

	err := RunChecker(checker, deferFunc)
	require.Equal(t, expected, err)
	require.Equal(t, []error{nil, expected}, got)
}
