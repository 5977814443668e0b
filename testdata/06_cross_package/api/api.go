package api

type Greeter interface {
	Greet(name string) string
}
