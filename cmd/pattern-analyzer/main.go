package main

import "github.com/petrarca/code-pattern-analyzer/internal/cmd"

func main() {
	cmd.Execute()
}
