package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobParametersHashIsOrderIndependent(t *testing.T) {
	a := NewJobParameters()
	a.Put("alpha", 1)
	a.Put("beta", "two")

	b := NewJobParameters()
	b.Put("beta", "two")
	b.Put("alpha", 1)

	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))
}

func TestJobParametersHashDistinguishesValues(t *testing.T) {
	a := NewJobParameters()
	a.Put("alpha", 1)

	b := NewJobParameters()
	b.Put("alpha", 2)

	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(b))
}

func TestJobParametersStringMasksSecrets(t *testing.T) {
	p := NewJobParameters()
	p.Put("db.password", "hunter2")
	p.Put("api-token", "abc123")
	p.Put("region", "eu-west-1")

	s := p.String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "abc123")
	assert.Contains(t, s, "region=eu-west-1")
}

func TestJobParametersCopyIsIndependent(t *testing.T) {
	a := NewJobParameters()
	a.Put("alpha", 1)

	b := a.Copy()
	b.Put("beta", 2)

	_, ok := a.Get("beta")
	assert.False(t, ok)
	assert.True(t, a.IsEmpty() == false)
}
