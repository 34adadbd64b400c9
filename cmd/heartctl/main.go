package main

import "github.com/vytor/heartgame/internal/cli"

func main() {
	cli.Execute()
}
