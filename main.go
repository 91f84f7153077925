package main

import "github.com/stuttgart-things/sealkit/cmd"

func main() {
	cmd.Execute()
}
