package main

// main is the entry point for the converterz application. Build-time variables
// 'version', 'commit' and 'date' are declared in root.go and set via -ldflags.
func main() {
	Execute()
}
