package abstract

type SimpleInterface interface {
	SimpleMethod() string
}

type SimpleImplementation struct{}

func (SimpleImplementation) SimpleMethod() string { return "simple" }

type Unrelated struct{} // no methods, should not appear
