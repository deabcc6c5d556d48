package main

import "github.com/sarchlab/cachereplay/cmd"

func main() {
	cmd.Execute()
}
