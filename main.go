package main

import "github.com/ksfraser/WealthSystem-sub002/cmd"

func main() {
	cmd.Execute()
}
