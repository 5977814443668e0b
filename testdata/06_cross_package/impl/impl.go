package impl

import "example.com/cross/api"

var _ api.Greeter = English{}

type English struct{}

func (English) Greet(name string) string { return "hello " + name }
