package main

import "github.com/screenlink/screenlink/cmd"

func main() {
	cmd.Execute()
}
