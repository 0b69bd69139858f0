package main

import "github.com/tkumagai/kosodate-events/internal/cli"

func main() {
	cli.Execute()
}
