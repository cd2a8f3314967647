package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anant1857/canvaschat/internal/app"
	"github.com/anant1857/canvaschat/internal/client"
	"github.com/anant1857/canvaschat/internal/config"
	"github.com/anant1857/canvaschat/internal/log"
	"github.com/anant1857/canvaschat/internal/store/sqlite"
	"github.com/anant1857/canvaschat/internal/utils"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "canvaschat",
		Short:         "Collaborative canvas and chat relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), drawCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootLogger := log.New("info")

			cfg, source, err := config.Load(bootLogger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", source).Str("addr", cfg.Addr).Msg("starting canvaschat server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}
			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}

func drawCmd() *cobra.Command {
	var (
		addr     string
		username string
		room     string
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Join a room as a headless drawing client",
		Long: `Join a room over WebSocket and drive a drawing session from stdin.

Commands:
  stroke <x1,y1> <x2,y2> ...   draw a stroke through the given points
  brush <#rrggbb> <width>      change the brush
  layer shared|private         switch the active layer
  clear                        clear the active layer
  say <text>                   send a chat message
  who                          print the room roster
  labels                       print the visible presence labels
  quit                         exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New("warn")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			st, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("open layer store: %w", err)
			}
			defer st.Close()

			channel := client.Dial(ctx, addr, logger)
			sess := client.NewSession(client.Config{
				Room:     room,
				UserID:   utils.NewID(),
				Username: username,
				Layers:   st,
			}, channel, logger)
			go sess.Run(ctx)

			fmt.Printf("joined %s as %s via %s\n", room, username, addr)

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "quit" {
					break
				}
				if err := runDrawCommand(sess, line); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				if ctx.Err() != nil {
					break
				}
			}

			cancel()
			// Give the session a beat to flush the private layer.
			time.Sleep(100 * time.Millisecond)
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "ws://localhost:5000/ws", "relay WebSocket address")
	cmd.Flags().StringVar(&username, "user", "cli-user", "username")
	cmd.Flags().StringVar(&room, "room", "lobby", "room to join")
	cmd.Flags().StringVar(&dbPath, "db", "canvaschat-client.db", "path to the local layer store")
	return cmd
}

func runDrawCommand(sess *client.Session, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "stroke":
		if len(fields) < 2 {
			return fmt.Errorf("stroke needs at least one x,y point")
		}
		sess.PointerDown()
		for _, field := range fields[1:] {
			x, y, err := parsePoint(field)
			if err != nil {
				sess.PointerUp()
				return err
			}
			sess.PointerMove(x, y)
		}
		sess.PointerUp()
	case "brush":
		if len(fields) != 3 {
			return fmt.Errorf("usage: brush <#rrggbb> <width>")
		}
		width, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || width <= 0 {
			return fmt.Errorf("bad brush width %q", fields[2])
		}
		sess.SetBrush(fields[1], width)
	case "layer":
		if len(fields) != 2 {
			return fmt.Errorf("usage: layer shared|private")
		}
		sess.SwitchLayer(fields[1])
	case "clear":
		sess.ClearActive()
	case "say":
		if len(fields) < 2 {
			return fmt.Errorf("usage: say <text>")
		}
		sess.SendChat(strings.Join(fields[1:], " "))
	case "who":
		for _, name := range sess.Roster() {
			fmt.Println(name)
		}
	case "labels":
		for _, label := range sess.Labels() {
			fmt.Printf("%s at (%.0f, %.0f)\n", label.Username, label.Pos.X, label.Pos.Y)
		}
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func parsePoint(field string) (float64, float64, error) {
	parts := strings.SplitN(field, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad point %q, want x,y", field)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad point %q: %v", field, err)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad point %q: %v", field, err)
	}
	return x, y, nil
}
