// Package main provides the entry point for the riskscan CLI.
//
// riskscan ranks the sentiment of the risk factors disclosed in 10-K
// filings. It extracts the "Item 1A. Risk Factors" section of every filing
// in a directory, scores its words and sentences and writes CSV tables and
// a Markdown report.
//
// Usage:
//
//	riskscan analyze <input-dir>
//	riskscan history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
