package main

import "github.com/EliabLM/pos-system-api/cmd"

func main() {
	cmd.Execute()
}
