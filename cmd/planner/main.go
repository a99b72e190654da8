package main

import "github.com/andrescamacho/production-planner/internal/adapters/cli"

func main() {
	cli.Execute()
}
