package main

import "github.com/preocts/daystats/cmd"

func main() {
	cmd.Execute()
}
