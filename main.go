package main

import "github.com/andresmejia3/pipeconf/cmd"

func main() {
	cmd.Execute()
}
