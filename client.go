package smolnet

import (
	"net/http"
	"time"
)

// HTTPTransport keeps a large pool of idle connections so that many
// concurrent dispatches against one environment reuse them. It sets no
// response timeout, cancellation goes through the request context.
var HTTPTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   50,
	MaxConnsPerHost:       200,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 5 * time.Second,
}

// HTTPClient is used by DefaultSession. It has no overall timeout, requests
// are bounded by their context.
var HTTPClient = &http.Client{
	Transport: HTTPTransport,
}
