package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/augur/pkg/symbol"
)

func TestBadnessScoring(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.EnterFile("a.py")

	require.NoError(t, s.Warning("something odd", nil))
	require.NoError(t, s.Error("something wrong", nil))

	assert.Equal(t, 6, s.FileBadness("a.py"))
	assert.Equal(t, 0, s.SimplifyBadness())
}

func TestSimplificationBucket(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.EnterFile("a.py")
	require.NoError(t, s.Warning("in file", nil))

	s.EnterSimplification()
	require.NoError(t, s.Warning("in simplification", nil))

	assert.Equal(t, 1, s.FileBadness("a.py"))
	assert.Equal(t, 1, s.SimplifyBadness())
	assert.Equal(t, 2, s.TargetBadness("a.py"))
}

func TestStrictEscalation(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.Strict = true
	s.EnterFile("a.py")

	err := s.Warning("escalated", nil)
	require.Error(t, err)
	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "escalated", fatal.Message)

	err = s.Error("also escalated", nil)
	require.Error(t, err)
}

func TestFatal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.EnterFile("a.py")

	loc := &symbol.Location{File: "a.py", Line: 3, Col: 1}
	err := s.Fatal("unrecoverable", loc)
	require.Error(t, err)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, loc, fatal.Culprit)
	assert.Contains(t, buf.String(), "fatal")
	assert.Contains(t, buf.String(), "unrecoverable")
}

func TestWarningSuppression(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.ShowWarnings = false
	s.EnterFile("a.py")

	require.NoError(t, s.Warning("hidden", nil))
	assert.Empty(t, buf.String())
	// Suppressed warnings still count toward badness.
	assert.Equal(t, 1, s.FileBadness("a.py"))
}

func TestInfoHiddenByDefault(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.EnterFile("a.py")

	s.Info("quiet", nil)
	assert.Empty(t, buf.String())
	assert.Equal(t, 0, s.FileBadness("a.py"))

	s.ShowInfo = true
	s.Info("loud", nil)
	assert.Contains(t, buf.String(), "loud")
}

func TestEmitLocation(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.EnterFile("a.py")

	loc := &symbol.Location{File: "a.py", Line: 12, Col: 5}
	require.NoError(t, s.Warning("here", loc))
	assert.Contains(t, buf.String(), "a.py:12:5")
}

func TestWithinThreshold(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.EnterFile("a.py")
	require.NoError(t, s.Error("costs five", nil))

	assert.True(t, s.WithinThreshold("a.py", 0), "zero threshold means unlimited")
	assert.True(t, s.WithinThreshold("a.py", 5))
	assert.False(t, s.WithinThreshold("a.py", 4))
}

func TestTotalBadness(t *testing.T) {
	var buf bytes.Buffer
	s := NewSessionWriter(&buf)
	s.EnterFile("a.py")
	require.NoError(t, s.Warning("one", nil))
	s.EnterFile("b.py")
	require.NoError(t, s.Warning("two", nil))
	s.EnterSimplification()
	require.NoError(t, s.Warning("three", nil))

	assert.Equal(t, 3, s.TotalBadness())
}
