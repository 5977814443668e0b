// Package contract defines a small set of capability contracts and the
// values that conform to them.
package contract

// TestInterface is satisfied by values that can label a string and
// combine an integer with a string.
type TestInterface interface {
	TestMethod1(param string) string
	TestMethod2(param1 int, param2 string) int
}

// AnotherInterface is satisfied by values that perform a side effect.
type AnotherInterface interface {
	AnotherMethod()
}

// SimpleInterface is satisfied by values that return a fixed label.
type SimpleInterface interface {
	SimpleMethod() string
}
