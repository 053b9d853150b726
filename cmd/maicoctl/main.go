package main

import "github.com/photonlab/maico/cmd/maicoctl/cmd"

func main() {
	cmd.Execute()
}
