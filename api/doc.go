// Package api serves stored observations and live fetch events over HTTP.
package api
