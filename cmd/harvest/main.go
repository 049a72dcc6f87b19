package main

import "harvest/internal/cli"

func main() {
	cli.Execute()
}
