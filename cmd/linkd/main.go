package main

import "github.com/orbitwallet/linkdispatch/internal/cli"

func main() {
	cli.Execute()
}
