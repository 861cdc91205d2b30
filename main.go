package main

import "github.com/cheerioskun/globninja/internal/cmd"

func main() {
	cmd.Execute()
}
