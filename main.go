package main

import "github.com/sadopc/trainr/internal/cli"

func main() {
	cli.Execute()
}
