package cmd

import (
	"fmt"
)

const banner = `
   _____ _ _        _____       _
  / ____(_) |      / ____|     | |
 | (___  _| |_ ___| |  __  __ _| |_ ___
  \___ \| | __/ _ \ | |_ |/ _` + "`" + ` | __/ _ \
  ____) | | ||  __/ |__| | (_| | ||  __/
 |_____/|_|\__\___|\_____|\__,_|\__\___|

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Site Password Gate - Version %s\x1b[0m\n\n", Version)
}
