// Package smolnet dispatches declarative REST endpoints against a configurable
// environment. An Endpoint describes a call (path, method, parameters and how
// its body is transferred), an Environment gives the base URL and default
// headers, and a Dispatcher runs the call through a Session and classifies the
// outcome into a typed Result.
package smolnet

var (
	// Debug enables verbose logging of dispatched requests and their outcome
	Debug = false
)
