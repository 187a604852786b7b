//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep go-generate tools
// such as mockgen pinned in go.mod.
package dartboard

import (
	_ "go.uber.org/mock/mockgen"
)
