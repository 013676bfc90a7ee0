// Package middleware provides HTTP middleware for the clip merge service:
// W3C access logging, Prometheus request metrics and CORS.
package middleware
