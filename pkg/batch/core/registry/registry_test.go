package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corejob "github.com/ripline/ripline/pkg/batch/core/job"
	"github.com/ripline/ripline/pkg/batch/core/port"
)

func factoryFor(name string) JobFactory {
	return func() (corejob.Job, error) {
		return corejob.NewSimpleJob(name, []port.Step{}), nil
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Register("importCustomers", factoryFor("importCustomers")))

	j, err := reg.Get("importCustomers")
	require.NoError(t, err)
	assert.Equal(t, "importCustomers", j.Name())
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Register("importCustomers", factoryFor("importCustomers")))
	assert.Error(t, reg.Register("importCustomers", factoryFor("importCustomers")))
}

func TestRegistryRejectsEmptyNameAndNilFactory(t *testing.T) {
	reg := NewJobRegistry()
	assert.Error(t, reg.Register("", factoryFor("")))
	assert.Error(t, reg.Register("importCustomers", nil))
}

func TestRegistryGetUnknownJob(t *testing.T) {
	reg := NewJobRegistry()
	_, err := reg.Get("missing")
	assert.Error(t, err)
}

func TestRegistryDetectsMismatchedFactory(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Register("expected", factoryFor("actual")))
	_, err := reg.Get("expected")
	assert.Error(t, err)
}

func TestRegistryNamesAreSorted(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Register("zeta", factoryFor("zeta")))
	require.NoError(t, reg.Register("alpha", factoryFor("alpha")))
	assert.Equal(t, []string{"alpha", "zeta"}, reg.Names())
}
