package main

import "github.com/sppd-tools/sppdparquet/cmd"

func main() {
	cmd.Execute()
}
