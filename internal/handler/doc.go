// Package handler implements the read-only HTTP API for informer.
//
// # Endpoints
//
//	GET /api/roles/{role}                   minion names holding role
//	GET /api/minions/{name}/grains/{item}   one grain of one minion
//	GET /api/addresses                      minion name to address
//	GET /api/call/{function}?arg=...        invoke a function by name
//
// Every endpoint accepts ?format=yaml; JSON is the default.
//
// # Errors
//
// Errors are returned as JSON {error, details}. A missing minion, grain or
// address is 404, a bad call is 400 or 404, and anything the mine reports
// (unreachable, malformed data) is 502.
//
// Middleware provides panic recovery and request logging.
package handler
