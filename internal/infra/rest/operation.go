package rest

import (
	"net/http"
	"net/url"
)

// Operation describes a single REST call.
type Operation struct {
	// Name identifies the call in logs and metrics (e.g. "coins_markets").
	Name string

	// Method defaults to GET.
	Method string

	// Path is joined to the client's base URL.
	Path string

	Query url.Values
}

// NewGetOperation creates a GET Operation.
func NewGetOperation(name, path string, query url.Values) Operation {
	return Operation{
		Name:   name,
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	}
}

func (op Operation) method() string {
	if op.Method == "" {
		return http.MethodGet
	}
	return op.Method
}

func (op Operation) name() string {
	if op.Name == "" {
		return op.Path
	}
	return op.Name
}
