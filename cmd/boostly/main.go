package main

import "github.com/omarnaeem59-commits/Modern-Boostly/cmd/boostly/root"

func main() {
	root.Execute()
}
