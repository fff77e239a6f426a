// Command invoicectl previews invoice bundles offline and issues access
// tokens for the API.
package main

import (
	"fmt"
	"os"

	"invoicebridge/internal/logger"
)

func main() {
	if err := logger.Setup(logger.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		os.Exit(1)
	}
	Execute()
}
