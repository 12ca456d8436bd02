package main

import "github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/cli"

func main() {
	cli.Execute()
}
