package main

import "fi-advisor-backend/internal/cli"

func main() {
	cli.Execute()
}
