package main

import "github.com/nexply/Auto-play/cmd"

func main() {
	cmd.Execute()
}
