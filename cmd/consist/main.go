// Package main provides the consist CLI.
package main

import "github.com/mesh-intelligence/consist/internal/cli"

func main() {
	cli.Execute()
}
