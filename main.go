package main

import "github.com/KaramelBytes/cpkdash/cmd"

func main() {
	cmd.Execute()
}
