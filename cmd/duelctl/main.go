package main

import "github.com/mcoot/mankind/internal/cli"

func main() {
	cli.Execute()
}
