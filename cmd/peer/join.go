package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/devbharu/EduSphere-sub001/internal/config"
	"github.com/devbharu/EduSphere-sub001/internal/rtc"
	"github.com/devbharu/EduSphere-sub001/internal/sigclient"
)

var (
	flagJoinServer   string
	flagJoinToken    string
	flagJoinSTUN     string
	flagJoinTURN     string
	flagJoinTURNUser string
	flagJoinTURNPass string
)

var joinCmd = &cobra.Command{
	Use:   "join <live-class-id>",
	Short: "Join a live class as a headless participant",
	Long: `Join a live class video room. The peer acquires its synthetic media
source, connects to the gateway, and answers or initiates negotiation
with every other participant until interrupted.

Examples:
  edusphere-peer join 3f1f0cb2-8a43-4b5e-9d2e-6f0a1c9e7d21 --token $TOKEN`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return joinClass(args[0])
	},
}

func init() {
	joinCmd.Flags().StringVar(&flagJoinServer, "server", "", "gateway websocket URL")
	joinCmd.Flags().StringVar(&flagJoinToken, "token", "", "session token")
	joinCmd.Flags().StringVar(&flagJoinSTUN, "stun", "", "STUN server URL")
	joinCmd.Flags().StringVar(&flagJoinTURN, "turn", "", "TURN server URL")
	joinCmd.Flags().StringVar(&flagJoinTURNUser, "turn-user", "", "TURN username")
	joinCmd.Flags().StringVar(&flagJoinTURNPass, "turn-pass", "", "TURN password")
	rootCmd.AddCommand(joinCmd)
}

func joinClass(roomID string) error {
	cfg, err := config.LoadPeer(config.PeerOptions{
		ServerURL:  flagJoinServer,
		Token:      flagJoinToken,
		STUNServer: flagJoinSTUN,
		TURNServer: flagJoinTURN,
		TURNUser:   flagJoinTURNUser,
		TURNPass:   flagJoinTURNPass,
	})
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return fmt.Errorf("a session token is required (--token or EDUSPHERE_TOKEN)")
	}

	client := sigclient.NewClient(cfg.ServerURL, cfg.Token)
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	media := rtc.NewSyntheticSource()
	orch := rtc.NewOrchestrator(rtc.ICEConfiguration(cfg), media, client)

	// Media must be acquired before any signaling; a failure here
	// aborts the join entirely.
	if err := orch.Start(); err != nil {
		return err
	}
	defer orch.Close()

	handler := sigclient.NewHandler(client.Incoming())
	go handler.Run()

	if err := client.JoinVideoRoom(roomID); err != nil {
		return err
	}
	slog.Info("joining video room", "room", roomID)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	for {
		select {
		case p := <-handler.AllUsers:
			// The joiner initiates toward every existing participant.
			for _, id := range p.Users {
				if err := orch.Offer(id); err != nil {
					slog.Warn("offer failed", "target", id, "err", err)
				}
			}

		case p := <-handler.UserJoined:
			orch.SetName(p.SocketID, p.UserName)
			slog.Info("participant joined", "conn", p.SocketID, "name", p.UserName)

		case p := <-handler.Offer:
			if err := orch.HandleOffer(p.Caller, p.Offer); err != nil {
				slog.Warn("inbound offer failed", "from", p.Caller, "err", err)
			}

		case p := <-handler.Answer:
			if err := orch.HandleAnswer(p.From, p.Answer); err != nil {
				slog.Warn("answer failed", "from", p.From, "err", err)
			}

		case p := <-handler.Candidate:
			if err := orch.HandleCandidate(p.From, p.Candidate); err != nil {
				slog.Warn("candidate failed", "from", p.From, "err", err)
			}

		case id := <-handler.UserLeft:
			slog.Info("participant left", "conn", id)
			orch.RemovePeer(id)

		case id := <-handler.LiveClassDeleted:
			if id == roomID {
				slog.Info("live class ended", "room", roomID)
				client.LeaveVideoRoom(roomID)
				return nil
			}

		case <-sig:
			slog.Info("leaving video room", "room", roomID)
			client.LeaveVideoRoom(roomID)
			return nil
		}
	}
}
