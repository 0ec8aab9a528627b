package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsDuplicateName(t *testing.T) {
	reg := NewRegistry()
	a := &DriverInfo{Name: "foo", Detect: []Triple{{Mfct: 1, Type: 1, Version: 1}}}
	b := &DriverInfo{Name: "foo", Detect: []Triple{{Mfct: 2, Type: 2, Version: 2}}}
	require.NoError(t, reg.Register(a))
	err := reg.Register(b)
	assert.Error(t, err)
}

func TestRegisterRejectsCollidingDetectTriple(t *testing.T) {
	reg := NewRegistry()
	tr := Triple{Mfct: 1, Type: 1, Version: 1}
	require.NoError(t, reg.Register(&DriverInfo{Name: "foo", Detect: []Triple{tr}}))
	err := reg.Register(&DriverInfo{Name: "bar", Detect: []Triple{tr}})
	assert.Error(t, err)
}

func TestLookupHonorsWildcardVersion(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&DriverInfo{
		Name:   "foo",
		Detect: []Triple{{Mfct: 1, Type: 2, Version: wildcardByte}},
	}))
	found := reg.Lookup(Triple{Mfct: 1, Type: 2, Version: 0x42})
	require.NotNil(t, found)
	assert.Equal(t, "foo", found.Name)
}

func TestLookupReturnsNilWhenNoMatch(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, reg.Lookup(Triple{Mfct: 99, Type: 1, Version: 1}))
}

func TestLookupMasksManufacturerHighBit(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&DriverInfo{
		Name:   "foo",
		Detect: []Triple{{Mfct: 0x1234, Type: 2, Version: 3}},
	}))
	found := reg.Lookup(Triple{Mfct: 0x9234, Type: 2, Version: 3})
	require.NotNil(t, found)
	assert.Equal(t, "foo", found.Name)
}
