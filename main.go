package main

import "github.com/ByLCY/docflow/cmd"

func main() {
	cmd.Execute()
}
