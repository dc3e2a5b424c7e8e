package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/docvault/internal/admin"
)

func main() {
	if err := admin.NewRootCmd(admin.OpenVault).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
