package main

import "github.com/ellavondegurechaff/questbot/cmd"

func main() {
	cmd.Execute()
}
