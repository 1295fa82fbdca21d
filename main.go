package main

import "github.com/ValentinKolb/dynDB/cmd"

func main() {
	cmd.Execute()
}
