package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"go.uber.org/zap"

	"tressette-client/internal/client"
	"tressette-client/internal/config"
	"tressette-client/internal/httpapi"
	"tressette-client/internal/session"
	"tressette-client/internal/view"
)

func main() {
	cfg := config.Load()
	serverFlag := flag.String("server", cfg.ServerURL, "websocket endpoint of the game server")
	nameFlag := flag.String("name", cfg.PlayerName, "player name")
	debugFlag := flag.String("debug", cfg.DebugAddr, "debug HTTP listen address (empty disables)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	title, _ := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("T", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("ressette", pterm.FgDarkGray.ToStyle()),
	).Srender()
	pterm.Print(title)

	c, err := client.Dial(ctx, *serverFlag, logger)
	if err != nil {
		pterm.Error.Printfln("Could not connect to %s: %v", *serverFlag, err)
		return
	}
	defer c.Close()

	if *debugFlag != "" {
		handler := httpapi.SetupRoutes(c)
		go func() {
			logger.Info("debug server listening", zap.String("addr", *debugFlag))
			if err := http.ListenAndServe(*debugFlag, handler); err != nil {
				logger.Warn("debug server stopped", zap.Error(err))
			}
		}()
	}

	name := strings.TrimSpace(*nameFlag)
	if name == "" {
		name, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your name").Show()
		name = strings.TrimSpace(name)
	}

	if err := enterGame(ctx, c, name); err != nil {
		pterm.Error.Printfln("Could not enter a game: %v", err)
		return
	}

	runUI(ctx, c)
	pterm.Println("Thanks for playing.")
}

// enterGame walks the create/join prompts until a lobby request went out.
func enterGame(ctx context.Context, c *client.Client, name string) error {
	mode, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Create a new game or join one?").
		WithOptions([]string{"Create", "Join"}).Show()

	teamChoice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Pick a team").
		WithOptions([]string{"Red (team 1)", "Blue (team 2)"}).Show()
	team := 1
	if strings.HasPrefix(teamChoice, "Blue") {
		team = 2
	}

	if mode == "Create" {
		return c.CreateGame(ctx, name, team, 31)
	}
	code, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter the game code").Show()
	return c.JoinGame(ctx, name, code, team)
}

// runUI renders snapshots and prompts for plays/declarations when the
// snapshot says the local player may act.
func runUI(ctx context.Context, c *client.Client) {
	sub := c.Subscribe("terminal")
	area, _ := pterm.DefaultArea.WithFullscreen(false).Start()
	defer func() { _ = area.Stop() }()

	for {
		snap, ok := <-sub
		if !ok {
			// Dropped as a slow consumer while a prompt was open, or the
			// session ended. Resubscribe unless the client is gone.
			select {
			case <-c.Done():
				return
			default:
				sub = c.Subscribe("terminal")
				continue
			}
		}
		area.Update(renderModel(snap))

		if snap.Phase == string(session.PhaseIdle) && strings.Contains(snap.Status, "Disconnected") {
			return
		}
		if wantsInput(snap) {
			drain(sub)
			promptAction(ctx, c, snap)
		}
	}
}

func wantsInput(m view.Model) bool {
	for _, hc := range m.Hand {
		if hc.Playable {
			return true
		}
	}
	return m.DeclarationOpen
}

// drain empties queued snapshots so the prompt reflects the latest one.
func drain(sub <-chan view.Model) {
	for {
		select {
		case <-sub:
		default:
			return
		}
	}
}

func promptAction(ctx context.Context, c *client.Client, m view.Model) {
	var options []string
	var cards []session.Card
	for _, hc := range m.Hand {
		if hc.Playable {
			options = append(options, hc.Card.String())
			cards = append(cards, hc.Card)
		}
	}
	if m.DeclarationOpen {
		options = append(options, "Declare a combination")
	}
	if len(options) == 0 {
		return
	}

	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Your move").
		WithOptions(options).Show()

	if choice == "Declare a combination" {
		promptDeclaration(ctx, c)
		return
	}
	for i, opt := range options {
		if opt == choice && i < len(cards) {
			if err := c.PlayCard(ctx, cards[i]); err != nil {
				pterm.Warning.Printfln("Play rejected: %v", err)
			}
			return
		}
	}
}

func promptDeclaration(ctx context.Context, c *client.Client) {
	catalog := session.Catalog()
	labels := make([]string, len(catalog))
	for i, d := range catalog {
		labels[i] = d.Label
	}
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("Declare").
		WithOptions(labels).Show()
	for i, label := range labels {
		if label == choice {
			if err := c.Declare(ctx, catalog[i]); err != nil {
				pterm.Warning.Printfln("Declaration rejected: %v", err)
			}
			return
		}
	}
}
