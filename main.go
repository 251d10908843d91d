package main

import (
	"github.com/sloonz/worldback/cmd"
)

func main() {
	cmd.Execute()
}
