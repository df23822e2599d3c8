package main

import "os"

// openOutput returns os.Stdout for "-" (or the empty string), otherwise
// creates/truncates the named file.
func openOutput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}
