// Package main provides the entry point for the linkja CLI.
//
// linkja de-identifies patient records at a participating site. It reads a
// delimited patient file and writes salted hashes that can be linked
// across sites without sharing identifiers.
//
// Usage:
//
//	linkja hash --input patients.csv --salt site.salt --private-key site.pem
//	linkja history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
