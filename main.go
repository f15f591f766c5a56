package main

import "github.com/sessionintel/session-intel/cmd"

func main() {
	cmd.Execute()
}
