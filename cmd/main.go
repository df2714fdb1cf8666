package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/wordle-sleuth/firstguess/cmd/config"
	"github.com/wordle-sleuth/firstguess/cmd/root"
)

func main() {
	_ = godotenv.Load()

	rootCmd := root.NewRootCmd()
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, config.ErrImpossible) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(root.ExitCode(err))
}
