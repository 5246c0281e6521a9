package main

import (
	"log"

	"influencer-platform/backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
