package main

import "github.com/Robinson-45/soundcloud-artists-scraper/internal/cli"

func main() {
	cli.Execute()
}
