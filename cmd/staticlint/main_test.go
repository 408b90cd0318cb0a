package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzers(t *testing.T) {
	list := analyzers()

	names := make(map[string]int, len(list))
	for _, a := range list {
		names[a.Name]++
	}

	for _, want := range []string{"nilness", "shadow", "copylocks", "lostcancel", "SA4006", "ST1000", "S1000", "errcheck", "noexit"} {
		assert.Contains(t, names, want)
	}
	for name, n := range names {
		assert.Equal(t, 1, n, "analyzer %s registered twice", name)
	}
}
