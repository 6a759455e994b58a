package main

import (
	"github.com/hedamo/transparency/pkg/cli"
)

func main() {
	cli.Execute()
}
