package main

import "gtkup/cmd"

func main() {
	cmd.Execute()
}
