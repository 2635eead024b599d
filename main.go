package main

import "mqttwire/cmd"

func main() {
	cmd.Execute()
}
