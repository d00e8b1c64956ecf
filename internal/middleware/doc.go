// Package middleware provides HTTP middleware for the monitoring server:
// request logging and Prometheus request metrics.
package middleware
