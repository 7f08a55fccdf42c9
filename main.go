package main

import (
	"github.com/MineVault/MineVault-Backend/api"
)

var envPath string = "."

func main() {
	server := api.NewServer(envPath)
	server.Start()
}
