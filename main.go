package main

import (
	"campusvoice/cmd"
)

func main() {
	cmd.Execute()
}
