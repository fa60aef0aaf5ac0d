package main

import "github.com/theirongolddev/dshield/cmd"

func main() {
	cmd.Execute()
}
