// Package main runs the branchguard API: a safety layer over local git
// branch switching, stashing and merging.
package main

import "github.com/branchguard/branchguard/internal"

func main() {
	internal.Run()
}
