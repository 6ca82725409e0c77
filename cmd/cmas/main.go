package main

import "github.com/erazemk/cmas/internal/cli"

func main() {
	cli.Execute()
}
