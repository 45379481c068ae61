package main

import "github.com/audiolibrelab/tunebuddy/cmd"

func main() {
	cmd.Execute()
}
