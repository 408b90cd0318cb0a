package main

import (
	"log"
	"os"
)

func helper() {
	os.Exit(2)
}

func main() {
	defer func() {
		os.Exit(3)
	}()
	helper()
	if len(os.Args) > 3 {
		panic("too many arguments") // want "прямой вызов panic в функции main запрещен"
	}
	if len(os.Args) > 2 {
		log.Fatalf("bad args: %v", os.Args) // want "прямой вызов log.Fatalf в функции main запрещен"
	}
	os.Exit(1) // want "прямой вызов os.Exit в функции main запрещен"
}
