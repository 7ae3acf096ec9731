// Package httpclient provides a shared HTTP client with retry and typed JSON
// helpers used by search provider implementations that talk to vendor REST
// APIs without a dedicated Go SDK.
//
// This is an internal package and is not part of the public API.
//
// # Client
//
// The [Client] type wraps net/http.Client with automatic retry on 429/503
// status codes and transient network errors, exponential backoff with
// jitter, and default headers (including bearer token authentication).
// Configuration uses the functional options pattern:
//
//	c := httpclient.New(
//	    httpclient.WithBaseURL("https://api.tavily.com"),
//	    httpclient.WithBearerToken(apiKey),
//	    httpclient.WithRetries(3),
//	    httpclient.WithTimeout(30 * time.Second),
//	)
//
// # Typed JSON Requests
//
// The [DoJSON] generic function sends an HTTP request with a JSON body and
// decodes the JSON response into the specified type. It handles retries
// transparently:
//
//	type Response struct { Results []Result `json:"results"` }
//	resp, err := httpclient.DoJSON[Response](ctx, client, "POST", "/search", reqBody)
//
// # Error Handling
//
// API errors are returned as [*APIError] with the HTTP status code and
// response body. The client automatically parses JSON error bodies to
// extract human-readable error messages.
package httpclient
