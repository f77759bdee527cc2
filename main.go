package main

import "videoapi/cmd"

func main() {
	cmd.Execute()
}
