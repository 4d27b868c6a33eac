//go:build tools
// +build tools

// Package tools documents development tool dependencies for the storefront.
// They are run via `go run` or `go install` and are not tracked in go.mod.
package tools

// mockgen - gomock generator for internal/mocks
//   Run: go generate ./internal/mocks
//   Version: go.uber.org/mock v0.6.0 (matches go.mod)
//
// Air - live reload for cmd/storefront during local development
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run: DEV=true AUTH_MODE=mock air -- ./cmd/storefront
//   Docs: https://github.com/air-verse/air
