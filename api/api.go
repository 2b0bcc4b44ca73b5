// Package api ships the OpenAPI document describing the HTTP interface.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPI []byte
