package main

import "maple/cli"

func main() {
	cli.Execute()
}
