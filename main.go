package main

import "github.com/KaramelBytes/ews-cli/cmd"

func main() {
	cmd.Execute()
}
