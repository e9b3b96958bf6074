package main

import "github.com/mcoot/homeguess/internal/cli"

func main() {
	cli.Execute()
}
