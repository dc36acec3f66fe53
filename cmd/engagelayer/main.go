package main

import (
	"engagelayer/internal/cmd"
)

func main() {
	cmd.Run()
}
