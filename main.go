package main

import "github.com/lijinlar/handsfree-windows/cmd"

func main() {
	cmd.Execute()
}
