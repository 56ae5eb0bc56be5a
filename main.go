package main

import "github.com/iksnae/visual-session/cmd"

func main() {
	cmd.Execute()
}
