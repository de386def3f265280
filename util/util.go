// Package util has leveled debug printing and small integer helpers.
package util

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type config struct {
	// Debug is the verbosity threshold; set with SFS_DEBUG.
	Debug uint64 `default:"0"`
}

var cfg config

func init() {
	if err := envconfig.Process("sfs", &cfg); err != nil {
		cfg.Debug = 0
	}
}

// DPrintf logs if level is at or below the configured debug level.
func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= cfg.Debug {
		log.Printf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

func SumOverflows(x uint64, y uint64) bool {
	return x+y < x
}
