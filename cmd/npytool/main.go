package main

import "github.com/robert-malhotra/go-npy/cmd/npytool/cmd"

func main() {
	cmd.Execute()
}
