package main

import "github.com/notargets/gomls/cmd"

func main() {
	cmd.Execute()
}
