package main

import "github.com/kozaktomas/photo-stamper/cmd"

func main() {
	cmd.Execute()
}
