// Package httpapi exposes the engine over HTTP with gin. Handlers translate
// between JSON request bodies and engine calls; all flow decisions stay in
// the engine. Error responses carry a single generic message per status so
// the HTTP surface leaks nothing the engine did not already decide to
// reveal.
package httpapi
