package main

import (
	"github.com/Pollen-lab/cellbouncer/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
