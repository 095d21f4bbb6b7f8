// Package words builds human friendly room names such as
// "sleepy-otter-biscuit".
package words

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

var adjectives = []string{
	"amber", "brisk", "cosy", "dapper", "eager", "fuzzy", "gentle", "hazy", "icy", "jolly",
	"keen", "lucky", "mellow", "nimble", "odd", "plucky", "quiet", "rusty", "sleepy", "tidy",
	"upbeat", "vivid", "witty", "young", "zesty", "bold", "calm", "dusty", "fancy", "glossy",
}

var creatures = []string{
	"otter", "heron", "badger", "lynx", "gecko", "walrus", "marten", "bison", "puffin", "stoat",
	"tapir", "ibis", "koala", "newt", "orca", "quokka", "raven", "shrew", "toucan", "vole",
	"wombat", "yak", "zebra", "alpaca", "beetle", "crane", "dingo", "egret", "ferret", "gibbon",
}

var things = []string{
	"biscuit", "lantern", "pebble", "comet", "kettle", "acorn", "button", "thimble", "candle", "ribbon",
	"marble", "muffin", "compass", "pretzel", "teacup", "harbor", "meadow", "canyon", "orbit", "puddle",
	"saddle", "tunnel", "walnut", "zipper", "anchor", "bramble", "cobble", "drizzle", "ember", "fable",
}

// RoomName returns a random three word name joined by hyphens.
func RoomName() (string, error) {
	parts := make([]string, 0, 3)
	for _, list := range [][]string{adjectives, creatures, things} {
		i, err := randomIndex(len(list))
		if err != nil {
			return "", err
		}
		parts = append(parts, list[i])
	}
	return strings.Join(parts, "-"), nil
}

// randomIndex returns a cryptographically secure index in [0, n).
func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random index: %w", err)
	}
	return int(v.Int64()), nil
}
