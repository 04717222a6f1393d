package main

import "github.com/ChaseHampton/graver/cmd"

func main() {
	cmd.Execute()
}
