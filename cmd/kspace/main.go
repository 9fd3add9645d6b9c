package main

import "github.com/kspace-tools/kspace/cmd/kspace/cmd"

func main() {
	cmd.Execute()
}
