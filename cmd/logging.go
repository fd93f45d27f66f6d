package cmd

import (
	"github.com/Carmen-Shannon/echolocation/log"
	"github.com/urfave/cli"
)

var logger = log.New("echolocate")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
