// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const coverProfile = "coverage.out"

// Test groups test targets (all, unit, cover, scenarios).
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs tests in short mode.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-short", "./...")
}

// Cover runs all tests and prints per-function coverage.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// Scenarios builds the binary, then checks and runs every sample scenario
// against a throwaway config directory.
func (Test) Scenarios() error {
	mg.Deps(Build)

	files, err := filepath.Glob(scenarioGlob)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No scenarios found.")
		return nil
	}

	configDir, err := os.MkdirTemp("", "consist-scenarios-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(configDir)

	for _, f := range files {
		for _, cmd := range []string{"check", "run"} {
			if err := sh.RunV(binaryPath(), "--config-dir", configDir, cmd, f); err != nil {
				return fmt.Errorf("%s %s: %w", cmd, f, err)
			}
		}
	}
	return nil
}
