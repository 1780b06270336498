// Command keygen mints fresh score-key material for provisioning: a
// PBKDF2-derived AES-256 key plus a random IV, printed as the 96-hex
// string the SCORE_KEY environment variable expects. The same string must
// be baked into the matching game client build.
package main

import (
	"fmt"
	"os"

	"github.com/openflappy/leaderboard-service/internal/cryptox"
)

func main() {
	km, err := cryptox.NewRandomKeyMaterial()
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
	fmt.Println(km.String())
}
