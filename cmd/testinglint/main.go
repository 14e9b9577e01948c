// Command testinglint reports discouraged Testing Library usage in
// JavaScript and TypeScript test files.
package main

import (
	"os"

	_ "github.com/specvital/testinglint/pkg/rules/all"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
