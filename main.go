package main

import "github.com/callmesh/dialogrt/cmd"

func main() {
	cmd.Execute()
}
