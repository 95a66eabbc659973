package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosestSourceSuggestsNearMisses(t *testing.T) {
	assert.Equal(t, "senat", closestSource("senta"))
	assert.Equal(t, "hatvp", closestSource("hatpv"))
	assert.Equal(t, "rne", closestSource("rn"))
}

func TestClosestSourceStaysQuietOnGibberish(t *testing.T) {
	assert.Empty(t, closestSource("zzzzzz"))
	assert.Empty(t, closestSource(""))
}
