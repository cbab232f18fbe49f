package testutil

import (
	"slices"
	"testing"
	"time"

	"github.com/logtape-go/logtape/core"
)

// Eventually waits for a condition to be true within the timeout period.
// It checks the condition every 10ms until it returns true or the timeout expires.
func Eventually(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	if message != "" {
		t.Fatal(message)
	} else {
		t.Fatal("Condition not met within timeout")
	}
}

// EventuallyEqual waits for a function to return the expected value.
func EventuallyEqual[T comparable](t *testing.T, getter func() T, expected T, timeout time.Duration) {
	t.Helper()

	Eventually(t, func() bool {
		return getter() == expected
	}, timeout, "")
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error, message string) {
	t.Helper()
	if err != nil {
		if message != "" {
			t.Fatalf("%s: %v", message, err)
		} else {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		if message != "" {
			t.Fatal(message)
		} else {
			t.Fatal("Expected error but got nil")
		}
	}
}

// AssertEqual fails the test if actual != expected.
func AssertEqual[T comparable](t *testing.T, actual, expected T, message string) {
	t.Helper()
	if actual != expected {
		if message != "" {
			t.Fatalf("%s: expected %v, got %v", message, expected, actual)
		} else {
			t.Fatalf("Expected %v, got %v", expected, actual)
		}
	}
}

// AssertContains fails the test if the slice doesn't contain the value.
func AssertContains[T comparable](t *testing.T, slice []T, value T, message string) {
	t.Helper()
	if slices.Contains(slice, value) {
		return
	}
	if message != "" {
		t.Fatalf("%s: %v not found in slice", message, value)
	} else {
		t.Fatalf("%v not found in slice", value)
	}
}

// Recorder wraps a *sink.Memory (accepted here as any core.Sink that can
// hand back captured records, to avoid an import cycle with package
// sink) for use as a test's sole emit destination.
type Recorder interface {
	core.Sink
	Records() []core.Record
	Find(predicate func(*core.Record) bool) []core.Record
}

// AssertRecord fails the test unless rec captured at least one record
// matching predicate.
func AssertRecord(t *testing.T, rec Recorder, predicate func(*core.Record) bool, message string) core.Record {
	t.Helper()
	matches := rec.Find(predicate)
	if len(matches) == 0 {
		if message != "" {
			t.Fatalf("%s: no matching record among %d captured", message, len(rec.Records()))
		} else {
			t.Fatalf("no matching record among %d captured", len(rec.Records()))
		}
	}
	return matches[0]
}

// AssertNoRecord fails the test if rec captured any record matching
// predicate.
func AssertNoRecord(t *testing.T, rec Recorder, predicate func(*core.Record) bool, message string) {
	t.Helper()
	matches := rec.Find(predicate)
	if len(matches) != 0 {
		if message != "" {
			t.Fatalf("%s: expected no matching record, found %d", message, len(matches))
		} else {
			t.Fatalf("expected no matching record, found %d", len(matches))
		}
	}
}
