package main

import "github.com/theirongolddev/savecast/cmd"

func main() {
	cmd.Execute()
}
