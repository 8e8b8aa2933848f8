// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGofmt = "gofmt"
	binLint  = "golangci-lint"
)

// sourceDirs are the trees gofmt inspects; the module has no Go code elsewhere.
var sourceDirs = []string{"cmd", "internal", "pkg", "magefiles"}

// Lint groups static checks (fmt, vet, all).
type Lint mg.Namespace

// Fmt fails when any source file is not gofmt-clean. Files are listed, never
// rewritten.
func (Lint) Fmt() error {
	out, err := sh.Output(binGofmt, append([]string{"-l"}, sourceDirs...)...)
	if err != nil {
		return err
	}
	if out = strings.TrimSpace(out); out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// Vet runs go vet on every package.
func (Lint) Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

// All runs fmt and vet, then golangci-lint.
func (Lint) All() error {
	mg.SerialDeps(Lint.Fmt, Lint.Vet)
	return sh.RunV(binLint, "run", "./...")
}
