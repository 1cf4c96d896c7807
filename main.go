package main

import "github.com/frahmantamala/office-ticketing/cmd"

func main() {
	cmd.Execute()
}
