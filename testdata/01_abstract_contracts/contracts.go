package abstract

type TestInterface interface {
	TestMethod1(param string) string
	TestMethod2(param1 int, param2 string) int
}

type AnotherInterface interface {
	AnotherMethod()
}
