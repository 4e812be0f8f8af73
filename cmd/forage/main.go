// Command forage tracks places to forage wild food.
package main

import "github.com/mesh-intelligence/forage/internal/cli"

func main() {
	cli.Execute()
}
