package main

import (
	"pollpulse.io/pollpulse/cmd/pollpulse/cmd"
)

func main() {
	cmd.Execute()
}
