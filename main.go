// Package main is the entry point for phim.
package main

import (
	"github.com/raidenhub/phim/cmd"
	"github.com/raidenhub/phim/config"
	"github.com/raidenhub/phim/internal/cache"
	"github.com/raidenhub/phim/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()

	cmd.Execute()
}
