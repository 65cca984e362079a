package main

import (
	"github.com/NVIDIA/oikos/pkg/cli"
)

func main() {
	cli.Execute()
}
