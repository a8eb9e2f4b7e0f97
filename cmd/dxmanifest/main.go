// Package main provides the entry point for the dxmanifest CLI.
//
// dxmanifest builds the training manifest of an ADHD classification
// dataset: it pairs every preprocessed scan file with the diagnosis of its
// subject and writes the pairs as a CSV file.
//
// Usage:
//
//	dxmanifest build --image-dir ./images --reference ./phenotypic.tsv
//	dxmanifest build --dataset peking
//
// See --help for all available options.
package main

// main is the entry point for dxmanifest.
func main() {
	Execute()
}
