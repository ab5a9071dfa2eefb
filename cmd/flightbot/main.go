package main

import "github.com/PauloCosta30/flight-alert-bot/internal/cli"

func main() {
	cli.Execute()
}
