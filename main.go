package main

import "github.com/jjenkins/revera/cmd"

func main() {
	cmd.Execute()
}
