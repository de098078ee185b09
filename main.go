package main

import "github.com/nanokv/nanokv/cmd"

func main() {
	cmd.Execute()
}
