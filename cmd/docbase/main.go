// Package main is the entry point for the docbase CLI.
package main

func main() {
	Execute()
}
