package contract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halfTest provides only the first TestInterface operation.
type halfTest struct{}

func (halfTest) TestMethod1(param string) string { return param }

// wrongShape has TestMethod2 with the wrong parameter types.
type wrongShape struct{}

func (wrongShape) TestMethod1(param string) string { return param }
func (wrongShape) TestMethod2(a, b int) int        { return a + b }

// ptrSimple only satisfies SimpleInterface through its pointer.
type ptrSimple struct{}

func (*ptrSimple) SimpleMethod() string { return "ptr" }

func TestContractOperations(t *testing.T) {
	ops := Test.Operations()
	require.Len(t, ops, 2)
	assert.Equal(t, "TestMethod1", ops[0].Name)
	assert.Equal(t, "TestMethod1(string) string", ops[0].Signature)
	assert.Equal(t, "TestMethod2(int, string) int", ops[1].Signature)

	require.Len(t, Another.Operations(), 1)
	assert.Equal(t, "AnotherMethod()", Another.Operations()[0].Signature)
	assert.Equal(t, "SimpleInterface", Simple.Name)
}

func TestOfPanicsOnNonInterface(t *testing.T) {
	assert.Panics(t, func() { Of[int]() })
}

func TestConformCorpusValues(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		contracts []Contract
	}{
		{"simple", SimpleImplementation{}, []Contract{Simple}},
		{"test", TestImplementation{}, []Contract{Test}},
		{"another", AnotherImplementation{}, []Contract{Another}},
		{"multiple", MultipleImplementation{}, []Contract{Test, Another}},
		{"multiple reversed", MultipleImplementation{}, []Contract{Another, Test}},
		{"pointer to value", &TestImplementation{}, []Contract{Test}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Conform(tt.value, tt.contracts...))
		})
	}
}

func TestConformMissingOperation(t *testing.T) {
	err := Conform(halfTest{}, Test)
	require.Error(t, err)

	var ice *IncompleteConformanceError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, "TestInterface", ice.Contract)
	assert.Equal(t, []string{"TestMethod2"}, ice.Missing)
	assert.Empty(t, ice.Mismatched)
	assert.Contains(t, err.Error(), "contract.halfTest does not satisfy TestInterface")
	assert.Contains(t, err.Error(), "missing TestMethod2")
}

func TestConformMismatchedSignature(t *testing.T) {
	var ice *IncompleteConformanceError
	require.True(t, errors.As(Conform(wrongShape{}, Test), &ice))
	assert.Empty(t, ice.Missing)
	assert.Equal(t, []string{"TestMethod2"}, ice.Mismatched)
}

func TestConformPointerReceiver(t *testing.T) {
	var ice *IncompleteConformanceError
	require.True(t, errors.As(Conform(ptrSimple{}, Simple), &ice))
	assert.Equal(t, []string{"SimpleMethod"}, ice.PointerReceiver)
	assert.Contains(t, ice.Error(), "pointer receiver only SimpleMethod")

	assert.NoError(t, Conform(&ptrSimple{}, Simple))
}

func TestConformNil(t *testing.T) {
	var ice *IncompleteConformanceError
	require.True(t, errors.As(Conform(nil, Test), &ice))
	assert.Equal(t, "<nil>", ice.Type)
	assert.Equal(t, []string{"TestMethod1", "TestMethod2"}, ice.Missing)
}

func TestConformMultipleContractsIndependent(t *testing.T) {
	// AnotherImplementation satisfies Another but not Test, whatever the order.
	for _, order := range [][]Contract{{Test, Another}, {Another, Test}} {
		err := Conform(AnotherImplementation{}, order...)
		require.Error(t, err)
		var ice *IncompleteConformanceError
		require.True(t, errors.As(err, &ice))
		assert.Equal(t, "TestInterface", ice.Contract)
		assert.Equal(t, []string{"TestMethod1", "TestMethod2"}, ice.Missing)
		assert.NotContains(t, err.Error(), "AnotherInterface")
	}
}

func TestConformReportsEveryFailingContract(t *testing.T) {
	err := Conform(SimpleImplementation{}, Test, Another)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy TestInterface")
	assert.Contains(t, err.Error(), "does not satisfy AnotherInterface")
}
