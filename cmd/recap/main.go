package main

import "movie-recap/internal/cli"

func main() {
	cli.Main()
}
