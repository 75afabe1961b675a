package main

import "github.com/knagata/kadai/cmd"

func main() {
	cmd.Execute()
}
