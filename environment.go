package smolnet

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment describes a deployment target requests are sent to.
type Environment interface {
	// BaseURL is the prefix every endpoint path is appended to.
	BaseURL() string
	// Headers are the default HTTP headers added to each request.
	Headers() map[string]string
}

// Env is a static Environment.
type Env struct {
	URL    string            `envconfig:"BASE_URL" required:"true"`
	Header map[string]string `envconfig:"HEADERS"`
}

func (e Env) BaseURL() string {
	return e.URL
}

func (e Env) Headers() map[string]string {
	if e.Header == nil {
		return map[string]string{}
	}
	return e.Header
}

var (
	// Development targets a local API server.
	Development = Env{
		URL: "http://api.localhost:3000/v1",
		Header: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer yourBearerToken",
		},
	}
	// Production targets the public API.
	Production = Env{
		URL: "https://api.yourapp.com/v1",
	}
)

// LoadEnv reads an environment from process variables, prefix_BASE_URL and
// prefix_HEADERS (as Key:Value,Key2:Value2).
func LoadEnv(prefix string) (Env, error) {
	var e Env
	if err := envconfig.Process(prefix, &e); err != nil {
		return Env{}, fmt.Errorf("failed to load environment %s: %w", prefix, err)
	}
	return e, nil
}
