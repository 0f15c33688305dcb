package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Lints a challenge definition JSON file before import: layered payload
// format, flag format, difficulty values, hint presence.

type JSONChallenge struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Description      string   `json:"description"`
	Points           int      `json:"points"`
	Hints            []string `json:"hints"`
	EncryptedMessage string   `json:"encrypted_message"`
	Flag             string   `json:"flag"`
}

var flagFormat = regexp.MustCompile(`^FLAG\{.*\}$`)

var validDifficulties = map[string]bool{
	"easy": true, "medium": true, "hard": true,
}

func main() {
	jsonPath := "./data/challenges.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", jsonPath, err)
		os.Exit(1)
	}

	var defs []JSONChallenge
	if err := json.Unmarshal(data, &defs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse %s: %v\n", jsonPath, err)
		os.Exit(1)
	}

	issues := 0
	seen := make(map[string]bool)

	for i, def := range defs {
		where := fmt.Sprintf("challenge %d (%s)", i, def.ID)

		if def.ID == "" {
			report(&issues, "%s: empty id", where)
		} else if seen[def.ID] {
			report(&issues, "%s: duplicate id", where)
		}
		seen[def.ID] = true

		if !validDifficulties[def.Difficulty] {
			report(&issues, "%s: invalid difficulty %q", where, def.Difficulty)
		}
		if !flagFormat.MatchString(def.Flag) {
			report(&issues, "%s: flag does not match FLAG{...}", where)
		}
		if len(def.Hints) == 0 {
			report(&issues, "%s: no hints", where)
		}
		if def.Points <= 0 {
			report(&issues, "%s: non-positive points", where)
		}

		// Layered payload: LAYER_TYPE:KEY:CIPHERTEXT
		parts := strings.SplitN(def.EncryptedMessage, ":", 3)
		switch {
		case len(parts) < 3:
			report(&issues, "%s: encrypted_message is not LAYER_TYPE:KEY:CIPHERTEXT", where)
		case !strings.EqualFold(parts[0], def.Type):
			report(&issues, "%s: layer type %q does not match challenge type %q", where, parts[0], def.Type)
		case parts[1] == "":
			report(&issues, "%s: empty key segment", where)
		}
	}

	if issues > 0 {
		fmt.Fprintf(os.Stderr, "%d issue(s) found in %s\n", issues, jsonPath)
		os.Exit(1)
	}
	fmt.Printf("%s: %d challenges OK\n", jsonPath, len(defs))
}

func report(issues *int, format string, args ...interface{}) {
	*issues++
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
