package main

import "github.com/blueprintfinder/sdeexport/cmd"

func main() {
	cmd.Execute()
}
