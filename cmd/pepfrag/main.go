// PepFrag - in-silico protein digestion and peptide fragmentation tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/pepfrag/cmd/pepfrag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
