// Package integration holds end-to-end tests that need Docker; run them with -tags integration.
package integration
