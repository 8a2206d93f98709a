package main

import (
	"tickstats/internal/cli"
)

func main() {
	cli.Execute()
}
