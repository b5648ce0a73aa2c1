package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Pickle  bool
	Source  bool
	Convert bool
}

var d *debug

func init() {
	d = &debug{}
	d.Pickle = boolEnv("GATHERCONV_DEBUG_PICKLE")
	d.Source = boolEnv("GATHERCONV_DEBUG_SOURCE")
	d.Convert = boolEnv("GATHERCONV_DEBUG_CONVERT")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Pickle() bool {
	return d.Pickle
}
func Source() bool {
	return d.Source
}
func Convert() bool {
	return d.Convert
}
