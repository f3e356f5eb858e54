package main

import "github.com/kdiomande/courrier-registry/cmd"

func main() {
	cmd.Execute()
}
