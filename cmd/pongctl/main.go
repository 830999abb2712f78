package main

import (
	"github.com/Pitskhela0/pong-game/internal/cli"
)

func main() {
	cli.Execute()
}
