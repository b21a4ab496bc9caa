package main

import (
	"flag"
	"log"

	"github.com/danmuck/posebridge/internal/config"
)

func main() {
	kind := flag.String("kind", "bridge", "config kind: bridge|local")
	output := flag.String("output", "cmd/posebridge/config.toml", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "cmd/posebridge/config.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		if _, err := config.LoadBridgeConfig(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s", *input)
		return
	}

	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, *output)
}
