package main

import "food-network-backend/cmd"

func main() {
	cmd.Execute()
}
