package main

import "github.com/photonlab/maico/cmd/maicod/cmd"

func main() {
	cmd.Execute()
}
