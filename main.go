package main

import "github.com/ValentinKolb/mqRPC/cmd"

func main() {
	cmd.Execute()
}
