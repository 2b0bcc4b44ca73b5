package middleware

// Exported for tests.
var (
	FilterBody    = filterBody
	FilterHeaders = filterHeaders
)
