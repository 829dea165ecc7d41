package main

import "github.com/ridoystarlord/fixturegen/cmd"

func main() {
	cmd.Execute()
}
