// cmd/hanabi/main.go is the interactive text client. It speaks the REST API
// only; all rules live server-side.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

var colours = []string{"Red", "Green", "White", "Yellow", "Blue"}

type counters struct {
	Used      int `json:"used"`
	Available int `json:"available"`
}

type card struct {
	Colour string `json:"colour"`
	Rank   int    `json:"rank"`
}

type gameState struct {
	Players   []string          `json:"players"`
	Hands     map[string][]card `json:"hands"`
	DeckSize  int               `json:"deck_size"`
	Discards  []card            `json:"discards"`
	Played    []card            `json:"played"`
	Knowledge counters          `json:"knowledge"`
	Lives     counters          `json:"lives"`
	GameOver  bool              `json:"game_over"`
	Won       bool              `json:"won"`
}

type client struct {
	server string
	player string
	gameID string
	http   *http.Client
	in     *bufio.Scanner
}

func main() {
	in := bufio.NewScanner(os.Stdin)
	c := &client{http: http.DefaultClient, in: in}

	c.server = prompt(in, "Server", envDefault("HANABI_SERVER", "localhost:8080"))
	c.player = prompt(in, "Player name", os.Getenv("HANABI_PLAYER"))
	c.gameID = prompt(in, "Game ID", "")

	fmt.Println("Hanabi client. Press Ctrl+C to exit.")
	fmt.Println("Actions: print, play <idx>, discard <idx>, inform <player>, history, all_history")

	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		words := strings.Fields(in.Text())
		if len(words) == 0 {
			continue
		}
		var err error
		switch words[0] {
		case "print":
			err = c.printState()
		case "play":
			err = c.move("play", words[1:])
		case "discard":
			err = c.move("discard", words[1:])
		case "inform":
			err = c.inform(words[1:])
		case "history":
			err = c.history(true)
		case "all_history":
			err = c.history(false)
		default:
			fmt.Println("unrecognised action")
			continue
		}
		if err != nil {
			fmt.Printf("failed: %v\n", err)
		}
	}
}

func (c *client) get(path string, out interface{}) error {
	resp, err := c.http.Get("http://" + c.server + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *client) post(path string, form url.Values, out interface{}) error {
	resp, err := c.http.PostForm("http://"+c.server+path, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *client) printState() error {
	var state gameState
	if err := c.get(fmt.Sprintf("/game/%s/%s", c.gameID, c.player), &state); err != nil {
		return err
	}
	printGameState(&state)
	return nil
}

func (c *client) move(kind string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s <card index>", kind)
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("card index must be an integer")
	}
	form := url.Values{"card_index": {args[0]}}
	var result map[string]interface{}
	if err := c.post(fmt.Sprintf("/%s/%s/%s", kind, c.gameID, c.player), form, &result); err != nil {
		return err
	}
	fmt.Printf("%v\n", result)
	return c.printState()
}

func (c *client) inform(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: inform <player>")
	}
	recipient := args[0]
	which := prompt(c.in, "Enter a colour or a rank", "")

	form := url.Values{"recipient": {recipient}}
	if _, err := strconv.Atoi(which); err == nil {
		form.Set("rank", which)
	} else {
		form.Set("colour", capitalise(which))
	}

	var result struct {
		Positions []int `json:"positions"`
	}
	if err := c.post(fmt.Sprintf("/inform/%s/%s", c.gameID, c.player), form, &result); err != nil {
		return err
	}
	fmt.Printf("matching positions in %s's hand: %v\n", recipient, result.Positions)
	return nil
}

func (c *client) history(scoped bool) error {
	path := "/history/" + c.gameID
	if scoped {
		path += "/" + c.player
	}
	var lines []string
	if err := c.get(path, &lines); err != nil {
		return err
	}
	fmt.Println(strings.Join(lines, "\n"))
	return nil
}

func printGameState(state *gameState) {
	fmt.Println("----------------- Metadata ------------------------")
	fmt.Printf("Players: %s\n", strings.Join(state.Players, ", "))
	fmt.Printf("Lives: %d remaining, %d used\n", state.Lives.Available, state.Lives.Used)
	fmt.Printf("Knowledge: %d remaining, %d used\n", state.Knowledge.Available, state.Knowledge.Used)
	fmt.Printf("Deck: %d cards left\n", state.DeckSize)
	if state.Won {
		fmt.Println("All fireworks complete!")
	} else if state.GameOver {
		fmt.Println("The game has been lost.")
	}

	fmt.Println("------------------ Piles --------------------------")
	anyPlayed := false
	for _, colour := range colours {
		top := 0
		for _, c := range state.Played {
			if c.Colour == colour && c.Rank > top {
				top = c.Rank
			}
		}
		if top > 0 {
			fmt.Printf("Top card %s: %d\n", colour, top)
			anyPlayed = true
		}
	}
	if !anyPlayed {
		fmt.Println("No cards played.")
	}

	fmt.Println("----------------- Discard -------------------------")
	anyDiscarded := false
	for _, colour := range colours {
		var ranks []int
		for _, c := range state.Discards {
			if c.Colour == colour {
				ranks = append(ranks, c.Rank)
			}
		}
		if len(ranks) > 0 {
			sort.Ints(ranks)
			fmt.Printf("Colour %s: %v\n", colour, ranks)
			anyDiscarded = true
		}
	}
	if !anyDiscarded {
		fmt.Println("No cards discarded.")
	}

	fmt.Println("------------------ Hands --------------------------")
	names := make([]string, 0, len(state.Hands))
	for name := range state.Hands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts := make([]string, len(state.Hands[name]))
		for i, c := range state.Hands[name] {
			parts[i] = fmt.Sprintf("%s %d", c.Colour, c.Rank)
		}
		fmt.Printf("%s: %s\n", name, strings.Join(parts, ", "))
	}
	fmt.Println("---------------------------------------------------")
}

func prompt(in *bufio.Scanner, label, def string) string {
	if def != "" {
		fmt.Printf("%s (default %s): ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !in.Scan() {
		return def
	}
	text := strings.TrimSpace(in.Text())
	if text == "" {
		return def
	}
	return text
}

// capitalise normalises colour input ("red", "RED") to the palette form.
func capitalise(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
