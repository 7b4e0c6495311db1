package outcome

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		desc     string
		err      error
		expected Outcome
	}{
		{"nil error", nil, Terminated},
		{"not found error", NotFoundError("acquire", 42, syscall.ESRCH), NotFound},
		{"wrapped not found", fmt.Errorf("wait: %w", NotFoundError("acquire", 42, nil)), NotFound},
		{"unsupported", New(KindUnsupportedEnvironment, "validate", 1, "too old", nil), Unsupported},
		{"internal inconsistency", New(KindInternalInconsistency, "wait", 1, "not ready", nil), OSFailure},
		{"usage", New(KindUsage, "parse", 0, "bad", nil), Usage},
		{"bare ESRCH", fmt.Errorf("open: %w", syscall.ESRCH), NotFound},
		{"bare EPERM", fmt.Errorf("open: %w", syscall.EPERM), OSFailure},
		{"plain error", errors.New("boom"), OSFailure},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	all := []Outcome{Terminated, NotFound, Unsupported, OSFailure, Usage}

	for _, o := range all {
		code := ExitCode(o, ExitCollapsed)
		if o == Terminated {
			assert.Equal(t, 0, code)
		} else {
			assert.Equal(t, 1, code, "collapsed code for %s", o)
		}
	}

	distinct := map[Outcome]int{
		Terminated:  0,
		Usage:       1,
		NotFound:    2,
		Unsupported: 3,
		OSFailure:   4,
	}
	for o, want := range distinct {
		assert.Equal(t, want, ExitCode(o, ExitDistinct), "distinct code for %s", o)
	}
}

func TestParseExitMode(t *testing.T) {
	m, err := ParseExitMode("")
	assert.NoError(t, err)
	assert.Equal(t, ExitCollapsed, m)

	m, err = ParseExitMode("distinct")
	assert.NoError(t, err)
	assert.Equal(t, ExitDistinct, m)

	_, err = ParseExitMode("rich")
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	e := New(KindOSFailure, "acquire", 7, "An OS error occurred", syscall.EPERM)
	assert.Equal(t, "An OS error occurred: operation not permitted", e.Error())
	assert.True(t, e.Alarming())
	assert.ErrorIs(t, e, syscall.EPERM)

	nf := NotFoundError("acquire", 7, nil)
	assert.Equal(t, "PID 7 does not exist or has already terminated", nf.Error())
	assert.False(t, nf.Alarming())
}

func TestOutcomeMarshalText(t *testing.T) {
	b, err := NotFound.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "not_found", string(b))
}
