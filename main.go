package main

import "github.com/rkuiv/ticktally/cmd"

func main() {
	cmd.Execute()
}
