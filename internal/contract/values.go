package contract

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Compile-time conformance checks. A value missing an operation fails the build.
var (
	_ SimpleInterface  = SimpleImplementation{}
	_ TestInterface    = TestImplementation{}
	_ AnotherInterface = AnotherImplementation{}
	_ TestInterface    = MultipleImplementation{}
	_ AnotherInterface = MultipleImplementation{}
)

// SimpleImplementation satisfies SimpleInterface.
type SimpleImplementation struct{}

func (SimpleImplementation) SimpleMethod() string {
	return "简单实现"
}

// TestImplementation satisfies TestInterface with a sum-based TestMethod2.
type TestImplementation struct{}

func (TestImplementation) TestMethod1(param string) string {
	return "测试方法1实现: " + param
}

func (TestImplementation) TestMethod2(param1 int, param2 string) int {
	return param1 + utf8.RuneCountInString(param2)
}

// AnotherImplementation satisfies AnotherInterface. AnotherMethod writes a
// diagnostic line to Out, or to standard output when Out is nil.
type AnotherImplementation struct {
	Out io.Writer
}

func (a AnotherImplementation) AnotherMethod() {
	fmt.Fprintln(writerOrStdout(a.Out), "另一个方法的实现")
}

// MultipleImplementation satisfies both TestInterface and AnotherInterface.
// Its TestMethod2 is product-based.
type MultipleImplementation struct {
	Out io.Writer
}

func (MultipleImplementation) TestMethod1(param string) string {
	return "多重继承实现: " + param
}

func (MultipleImplementation) TestMethod2(param1 int, param2 string) int {
	return param1 * utf8.RuneCountInString(param2)
}

func (m MultipleImplementation) AnotherMethod() {
	fmt.Fprintln(writerOrStdout(m.Out), "多重继承的另一个方法实现")
}

func writerOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
