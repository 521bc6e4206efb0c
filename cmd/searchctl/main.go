package main

import "github.com/Adithya-Monish-Kumar-K/search-server/internal/cli"

func main() {
	cli.Execute()
}
