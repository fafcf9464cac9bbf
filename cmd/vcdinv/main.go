package main

import "github.com/zarrenspry/vcd-inventory/pkg/cli"

func main() {
	cli.Execute()
}
