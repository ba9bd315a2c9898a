package testutil

import (
	"errors"
	"net/http"
	"testing"
)

// The failure paths of these helpers would need a mock testing.T to observe;
// they are exercised indirectly by every package that uses them.

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertErrorHelpers(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
	AssertError(t, errors.New("bad input"))
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest("GET", "/payload")
	if req.Method != "GET" {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.URL.Path != "/payload" {
		t.Errorf("path = %s, want /payload", req.URL.Path)
	}

	if NewTestRecorder() == nil {
		t.Fatal("recorder is nil")
	}
}
