// Package main provides build targets for the consist project using Mage.
//
// Usage:
//
//	mage build          Compile the consist binary to bin/
//	mage test:all       Run all tests
//	mage test:unit      Run tests in short mode
//	mage test:cover     Run all tests with a coverage profile
//	mage test:scenarios Build, then check and run every scenario in testdata
//	mage lint:fmt       List files that need gofmt
//	mage lint:vet       Run go vet
//	mage lint:all       Run lint:fmt, lint:vet, then golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install consist to GOPATH/bin
package main

const (
	binGo      = "go"
	binaryName = "consist"
	binaryDir  = "bin"
	cmdDir     = "./cmd/consist"

	// scenarioGlob matches the sample scenarios exercised by test:scenarios.
	scenarioGlob = "internal/scenario/testdata/*.yaml"
)
