package main

import "github.com/vietddude/assetscan/internal/cli"

func main() {
	cli.Execute()
}
