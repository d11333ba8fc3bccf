package api

import _ "embed"

// OpenAPISpec — спецификация операторского API, отдаётся по /swagger/openapi.json.
//
//go:embed openapi.json
var OpenAPISpec []byte
