package main

import (
	"testing"

	"github.com/unixpickle/meshdiff/meshdiff"
)

func TestDefaultIterLimit(t *testing.T) {
	if defaultIterLimit != 1000 {
		t.Fatalf("expected 1000 iterations per pass but got %d", defaultIterLimit)
	}
	if defaultIterLimit <= meshdiff.DefaultICPIterLimit {
		t.Fatal("registration driver should allow more iterations than the pipeline")
	}
}
