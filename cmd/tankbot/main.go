// Command tankbot is an out-of-process tank algorithm. It speaks the tbp
// line protocol on stdin/stdout and plays one of the built-in algorithms.
package main

import (
	"flag"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/internal/algo"
	"github.com/ItayH27/tanks-game-simulation/pkg/tbp"
)

func main() {
	algorithm := flag.String("algorithm", "chaser", "built-in algorithm to play ("+strings.Join(names(), ", ")+")")
	name := flag.String("name", "", "name reported in the handshake (default: the algorithm)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	// stdout carries the protocol.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	newTank, ok := algo.RemoteTanks[*algorithm]
	if !ok {
		log.Fatal().Str("algorithm", *algorithm).Strs("known", names()).Msg("Unknown algorithm")
	}
	if *name == "" {
		*name = *algorithm
	}

	log.Debug().Str("algorithm", *algorithm).Str("name", *name).Msg("Serving")
	if err := tbp.Serve(os.Stdin, os.Stdout, *name, algo.Remote(newTank)); err != nil {
		log.Fatal().Err(err).Msg("Protocol error")
	}
}

func names() []string {
	out := make([]string, 0, len(algo.RemoteTanks))
	for n := range algo.RemoteTanks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
