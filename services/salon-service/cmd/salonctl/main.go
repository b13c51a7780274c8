package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/md-rashed-zaman/salonbook/libs/runtime"
)

func main() {
	ctx, stop := runtime.SignalContext()
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "salonctl:", err)
		os.Exit(1)
	}
}
