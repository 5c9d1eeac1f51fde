package main

import "github.com/1A7432/wcf-onebot/internal/cli"

func main() {
	cli.Execute()
}
