package abstract

import "fmt"

type TestImplementation struct{}

func (TestImplementation) TestMethod1(param string) string { return "test: " + param }

func (TestImplementation) TestMethod2(param1 int, param2 string) int { return param1 + len(param2) }

type AnotherImplementation struct{}

func (AnotherImplementation) AnotherMethod() { fmt.Println("another") }

type MultipleImplementation struct{}

func (MultipleImplementation) TestMethod1(param string) string { return "multiple: " + param }

func (MultipleImplementation) TestMethod2(param1 int, param2 string) int { return param1 * len(param2) }

func (MultipleImplementation) AnotherMethod() { fmt.Println("multiple") }
