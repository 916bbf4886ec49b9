package main

import (
	cmd "github.com/rohmanhakim/link-preview/internal/cli"
)

func main() {
	cmd.Execute()
}
