package main

import (
	"context"
	"log"
	"os"
)

func main() {
	server := &srv{ctx: context.Background()}
	server.loadApp()

	if err := server.app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
