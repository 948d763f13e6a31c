package main

import "github.com/jalvarado/sitegate/cmd/sitegate/cmd"

func main() {
	cmd.Execute()
}
