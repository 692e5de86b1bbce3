package main

import "govalve/host/cmd/valvectl/cmd"

func main() {
	cmd.Execute()
}
