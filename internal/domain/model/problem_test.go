package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicTestCases(t *testing.T) {
	p := &Problem{TestCases: []TestCase{
		{ID: "t1", IsPublic: true},
		{ID: "t2", IsPublic: false},
		{ID: "t3", IsPublic: true},
	}}

	public := p.PublicTestCases()
	assert.Len(t, public, 2)
	assert.Equal(t, "t1", public[0].ID)
	assert.Equal(t, "t3", public[1].ID)

	var none Problem
	assert.Empty(t, none.PublicTestCases())
}
